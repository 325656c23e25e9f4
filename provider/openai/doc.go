// Package openai implements the provider interfaces on top of the OpenAI
// chat completions API, including vision requests for captured images.
package openai
