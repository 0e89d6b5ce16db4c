package shaders

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrUnknownType = errors.New("unknown wgsl type")

// Field is one member of a WGSL struct with its host-shareable layout.
type Field struct {
	Name     string
	Type     string
	Location int    // -1 when the member has no @location
	Builtin  string // empty when the member is not a builtin
	Offset   uint64
	Size     uint64
	Align    uint64
}

type Struct struct {
	Name   string
	Fields []Field
	Size   uint64
	Align  uint64
}

func (s *Struct) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// UniformBinding is a `@group(g) @binding(b) var<uniform> name: Type;` declaration.
type UniformBinding struct {
	Group   uint32
	Binding uint32
	Name    string
	Type    string
}

// Reflection is the subset of a WGSL module the host pipeline binds against.
type Reflection struct {
	Structs         map[string]*Struct
	Uniforms        []UniformBinding
	VertexEntries   []string
	FragmentEntries []string
}

var (
	reComment  = regexp.MustCompile(`//[^\n]*`)
	reStruct   = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	reUniform  = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var<uniform>\s*(\w+)\s*:\s*(\w+)\s*;`)
	reLocation = regexp.MustCompile(`@location\((\d+)\)`)
	reBuiltin  = regexp.MustCompile(`@builtin\((\w+)\)`)
	reAttr     = regexp.MustCompile(`@\w+(\([^)]*\))?`)
	reVertex   = regexp.MustCompile(`@vertex\s+fn\s+(\w+)`)
	reFragment = regexp.MustCompile(`@fragment\s+fn\s+(\w+)`)
)

// Reflect extracts structs, uniform bindings and entry points from WGSL source and
// computes struct layouts following the WGSL alignment rules.
func Reflect(src string) (*Reflection, error) {
	src = reComment.ReplaceAllString(src, "")
	r := &Reflection{Structs: make(map[string]*Struct)}

	// Structs are declared before use in WGSL we emit, so a single ordered pass resolves nesting
	for _, m := range reStruct.FindAllStringSubmatch(src, -1) {
		s, err := r.parseStruct(m[1], m[2])
		if err != nil {
			return nil, err
		}
		r.Structs[s.Name] = s
	}

	for _, m := range reUniform.FindAllStringSubmatch(src, -1) {
		group, _ := strconv.ParseUint(m[1], 10, 32)
		binding, _ := strconv.ParseUint(m[2], 10, 32)
		if _, err := r.typeLayout(m[4]); err != nil {
			return nil, fmt.Errorf("uniform %s: %w", m[3], err)
		}
		r.Uniforms = append(r.Uniforms, UniformBinding{
			Group:   uint32(group),
			Binding: uint32(binding),
			Name:    m[3],
			Type:    m[4],
		})
	}

	for _, m := range reVertex.FindAllStringSubmatch(src, -1) {
		r.VertexEntries = append(r.VertexEntries, m[1])
	}
	for _, m := range reFragment.FindAllStringSubmatch(src, -1) {
		r.FragmentEntries = append(r.FragmentEntries, m[1])
	}
	return r, nil
}

func (r *Reflection) Struct(name string) (*Struct, bool) {
	s, ok := r.Structs[name]
	return s, ok
}

func (r *Reflection) Uniform(group, binding uint32) (UniformBinding, bool) {
	for _, u := range r.Uniforms {
		if u.Group == group && u.Binding == binding {
			return u, true
		}
	}
	return UniformBinding{}, false
}

func (r *Reflection) parseStruct(name, body string) (*Struct, error) {
	s := &Struct{Name: name, Align: 1}
	var offset uint64

	for _, decl := range splitTopLevel(body) {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}

		f := Field{Location: -1}
		if m := reLocation.FindStringSubmatch(decl); m != nil {
			f.Location, _ = strconv.Atoi(m[1])
		}
		if m := reBuiltin.FindStringSubmatch(decl); m != nil {
			f.Builtin = m[1]
		}
		decl = strings.TrimSpace(reAttr.ReplaceAllString(decl, ""))

		nameType := strings.SplitN(decl, ":", 2)
		if len(nameType) != 2 {
			return nil, fmt.Errorf("struct %s: malformed member %q", name, decl)
		}
		f.Name = strings.TrimSpace(nameType[0])
		f.Type = strings.TrimSpace(nameType[1])

		l, err := r.typeLayout(f.Type)
		if err != nil {
			return nil, fmt.Errorf("struct %s member %s: %w", name, f.Name, err)
		}
		offset = roundUp(l.align, offset)
		f.Offset, f.Size, f.Align = offset, l.size, l.align
		offset += l.size
		if l.align > s.Align {
			s.Align = l.align
		}
		s.Fields = append(s.Fields, f)
	}

	s.Size = roundUp(s.Align, offset)
	return s, nil
}

// wgslTypeLayout holds the byte size and alignment for a WGSL type.
type wgslTypeLayout struct {
	size  uint64
	align uint64
}

var builtinLayouts = map[string]wgslTypeLayout{
	"f32":         {4, 4},
	"i32":         {4, 4},
	"u32":         {4, 4},
	"vec2<f32>":   {8, 8},
	"vec3<f32>":   {12, 16},
	"vec4<f32>":   {16, 16},
	"vec2<u32>":   {8, 8},
	"vec3<u32>":   {12, 16},
	"vec4<u32>":   {16, 16},
	"vec2<i32>":   {8, 8},
	"vec3<i32>":   {12, 16},
	"vec4<i32>":   {16, 16},
	"mat2x2<f32>": {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat4x4<f32>": {64, 16},
}

func (r *Reflection) typeLayout(typeName string) (wgslTypeLayout, error) {
	typeName = strings.ReplaceAll(typeName, " ", "")
	if l, ok := builtinLayouts[typeName]; ok {
		return l, nil
	}
	if s, ok := r.Structs[typeName]; ok {
		return wgslTypeLayout{size: s.Size, align: s.Align}, nil
	}
	return wgslTypeLayout{}, fmt.Errorf("%w: %s", ErrUnknownType, typeName)
}

// VertexFormatName maps a WGSL attribute type to the format tag used by vertex structs.
func VertexFormatName(typeName string) (string, error) {
	switch strings.ReplaceAll(typeName, " ", "") {
	case "f32":
		return "float", nil
	case "vec2<f32>":
		return "float2", nil
	case "vec3<f32>":
		return "float3", nil
	case "vec4<f32>":
		return "float4", nil
	default:
		return "", fmt.Errorf("%w: %s is not a vertex attribute type", ErrUnknownType, typeName)
	}
}

// splitTopLevel splits on commas that are not nested inside <...>.
func splitTopLevel(body string) []string {
	var parts []string
	depth, start := 0, 0
	for i, c := range body {
		switch c {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, body[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, body[start:])
}

func roundUp(align, n uint64) uint64 {
	return (n + align - 1) / align * align
}
