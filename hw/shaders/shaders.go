package shaders

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

// Shaders come in pairs of vertex and fragment sources sharing the same
// base name. Fragment shaders sample the Spectrum frame from frameTexture.
//
//go:embed *.vert *.frag
var dir embed.FS

const DefaultName = "Passthrough"

// The texture unit the frame texture is bound to.
const frameTextureUnit = 0

// Names returns the sorted names of the embedded shaders having both a
// vertex and a fragment source.
func Names() []string {
	verts, err := fs.Glob(dir, "*.vert")
	if err != nil {
		panic(err)
	}

	var names []string
	for _, vert := range verts {
		name := strings.TrimSuffix(vert, ".vert")
		if _, err := fs.Stat(dir, name+".frag"); err == nil {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// A Pair holds the GLSL sources of a shader.
type Pair struct {
	Name     string
	Vertex   string
	Fragment string
}

// Lookup returns the sources of the named shader.
func Lookup(name string) (Pair, error) {
	vert, err := fs.ReadFile(dir, name+".vert")
	if err != nil {
		return Pair{}, fmt.Errorf("shader %s: %w", name, err)
	}
	frag, err := fs.ReadFile(dir, name+".frag")
	if err != nil {
		return Pair{}, fmt.Errorf("shader %s: %w", name, err)
	}
	return Pair{Name: name, Vertex: string(vert), Fragment: string(frag)}, nil
}

// Program compiles and links the named shader, and binds its frameTexture
// sampler to texture unit 0. It requires a current OpenGL context.
func Program(name string) (uint32, error) {
	p, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	vert, err := compile(p.Vertex, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("%s.vert: %w", name, err)
	}
	frag, err := compile(p.Fragment, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("%s.frag: %w", name, err)
	}
	prog, err := link(vert, frag)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}

	gl.UseProgram(prog)
	loc := gl.GetUniformLocation(prog, gl.Str("frameTexture\x00"))
	if loc < 0 {
		return 0, fmt.Errorf("%s: no frameTexture uniform", name)
	}
	gl.Uniform1i(loc, frameTextureUnit)
	return prog, nil
}

func compile(src string, typ uint32) (uint32, error) {
	csrc, free := gl.Strs(src + "\x00")
	sh := gl.CreateShader(typ)
	gl.ShaderSource(sh, 1, csrc, nil)
	free()
	gl.CompileShader(sh)

	var status int32
	if gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status); status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLength)

		log := make([]byte, logLength+1)
		gl.GetShaderInfoLog(sh, logLength, nil, &log[0])
		gl.DeleteShader(sh)

		return 0, fmt.Errorf("compile error: %v", string(log))
	}

	return sh, nil
}

func link(vert, frag uint32) (uint32, error) {
	prg := gl.CreateProgram()
	gl.AttachShader(prg, vert)
	gl.AttachShader(prg, frag)
	gl.LinkProgram(prg)

	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	if gl.GetProgramiv(prg, gl.LINK_STATUS, &status); status == gl.FALSE {
		var logLength int32
		var glLog [256]byte
		gl.GetProgramInfoLog(prg, int32(len(glLog)), &logLength, &glLog[0])
		gl.DeleteProgram(prg)
		return 0, fmt.Errorf("link error: %v", string(glLog[:logLength]))
	}

	return prg, nil
}
