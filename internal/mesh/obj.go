package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/softsim/internal/dynamo"
)

// LoadOBJ reads the vertex positions ("v x y z" records) of a Wavefront OBJ
// stream. Faces, normals and texture coordinates are ignored.
func LoadOBJ(r io.Reader, name string) (*Mesh, error) {
	var vertices []dynamo.Vec3

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || fields[0] != "v" {
			continue
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("%s:%d: vertex needs 3 coordinates", name, line)
		}
		var v dynamo.Vec3
		for k := 0; k < 3; k++ {
			f, err := strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, line, err)
			}
			v[k] = f
		}
		vertices = append(vertices, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return New(name, vertices), nil
}

func LoadOBJFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return LoadOBJ(f, name)
}
