// Package shader provides the embedded GLSL sources and their uniform contract.
package shader

import _ "embed"

// ColorVertexShader is the vertex shader for flat colored quads.
//
//go:embed color.vert
var ColorVertexShader string

// ColorFragmentShader is the fragment shader for flat colored quads.
//
//go:embed color.frag
var ColorFragmentShader string

// TexturedVertexShader is the vertex shader for lit, textured quads.
//
//go:embed textured.vert
var TexturedVertexShader string

// TexturedFragmentShader is the fragment shader for lit, textured quads.
//
//go:embed textured.frag
var TexturedFragmentShader string

// Uniform names shared by the programs.
const (
	UniformMVP             = "mvpMatrix"
	UniformColor           = "color"
	UniformModel           = "modelMatrix"
	UniformViewDirection   = "viewDirection"
	UniformNormal          = "normal"
	UniformSampler         = "textureSampler"
	UniformShake           = "shake"
	UniformLightCount      = "lightCount"
	UniformLightPositions  = "lightPositions"
	UniformLightBrightness = "lightBrightness"
)

// ColorUniforms lists every uniform the color program must expose.
var ColorUniforms = []string{UniformMVP, UniformColor}

// TexturedUniforms lists every uniform the textured program must expose.
var TexturedUniforms = []string{
	UniformMVP,
	UniformModel,
	UniformViewDirection,
	UniformNormal,
	UniformSampler,
	UniformShake,
	UniformLightCount,
	UniformLightPositions,
	UniformLightBrightness,
}

// Vertex attribute locations used by both programs.
const (
	AttribPosition = 0
	AttribTexCoord = 1
)
