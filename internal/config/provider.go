package config

import (
	"sync"

	"github.com/spf13/viper"
)

// Provider hands out the executable settings of one decompiler backend.
// Implementations must return the current values on every call; callers never
// cache the result, so edits made between two decompile calls take effect.
type Provider interface {
	ToolConfig(backend string) ToolConfig
}

// ViperProvider reads decompiler.<backend>.path and decompiler.<backend>.options
// from a viper instance each time it is asked.
type ViperProvider struct {
	v *viper.Viper
}

// NewViperProvider returns a Provider backed by v. A nil v uses the global viper.
func NewViperProvider(v *viper.Viper) *ViperProvider {
	if v == nil {
		v = viper.GetViper()
	}
	return &ViperProvider{v: v}
}

// ToolConfig implements Provider.
func (p *ViperProvider) ToolConfig(backend string) ToolConfig {
	prefix := "decompiler." + backend + "."
	return ToolConfig{
		Path:    expandHome(p.v.GetString(prefix + "path")),
		Options: p.v.GetString(prefix + "options"),
	}
}

// StaticProvider is an in-memory Provider. It is safe for concurrent use and
// can be changed between calls with Set.
type StaticProvider struct {
	mu    sync.RWMutex
	tools map[string]ToolConfig
}

// NewStaticProvider returns a StaticProvider seeded with tools.
func NewStaticProvider(tools map[string]ToolConfig) *StaticProvider {
	p := &StaticProvider{tools: make(map[string]ToolConfig, len(tools))}
	for name, tc := range tools {
		p.tools[name] = tc
	}
	return p
}

// Set replaces the settings for backend.
func (p *StaticProvider) Set(backend string, tc ToolConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tools[backend] = tc
}

// ToolConfig implements Provider. Unknown backends get the zero ToolConfig.
func (p *StaticProvider) ToolConfig(backend string) ToolConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.tools[backend]
}
