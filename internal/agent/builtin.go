// ABOUTME: Built-in agent definitions seeded into the registry at startup.
// ABOUTME: These four agents are always available and cannot be removed.

package agent

// Builtins returns the default agent set.
// A fresh slice is returned on each call so callers cannot mutate the seeds.
func Builtins() []*Agent {
	return []*Agent{
		{
			ID:           "general-assistant",
			Name:         "General Assistant",
			Description:  "A helpful AI assistant for general questions",
			Provider:     ProviderOpenAI,
			Model:        "gpt-4",
			SystemPrompt: "You are a helpful AI assistant. Provide clear, accurate, and helpful responses.",
			Capabilities: []string{"chat", "qa", "writing"},
		},
		{
			ID:           "creative-writer",
			Name:         "Creative Writer",
			Description:  "Specialized in creative writing and storytelling",
			Provider:     ProviderAnthropic,
			Model:        "claude-3-sonnet-20240229",
			SystemPrompt: "You are a creative writing expert. Help users develop stories, characters, and creative content.",
			Capabilities: []string{"writing", "storytelling", "creative"},
		},
		{
			ID:           "code-assistant",
			Name:         "Code Assistant",
			Description:  "Expert in programming and software development",
			Provider:     ProviderOpenAI,
			Model:        "gpt-4",
			SystemPrompt: "You are a programming expert. Help users with code, debugging, and software development questions.",
			Capabilities: []string{"coding", "debugging", "software"},
		},
		{
			ID:           "data-analyst",
			Name:         "Data Analyst",
			Description:  "Specialized in data analysis and insights",
			Provider:     ProviderAnthropic,
			Model:        "claude-3-sonnet-20240229",
			SystemPrompt: "You are a data analysis expert. Help users understand data, create visualizations, and derive insights.",
			Capabilities: []string{"data-analysis", "visualization", "insights"},
		},
	}
}

// SeedBuiltins registers every built-in agent with the registry.
func SeedBuiltins(r *Registry) error {
	for _, a := range Builtins() {
		if err := r.Register(a); err != nil {
			return err
		}
	}
	return nil
}
