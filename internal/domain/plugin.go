package domain

// ToolPlugin is one YAML knowledge file describing a pentesting tool.
// Plugins only enrich prompts before they reach the backend; the executor,
// store and logger never consult them.
type ToolPlugin struct {
	Tool        string           `yaml:"tool"`
	Description string           `yaml:"description"`
	Categories  []PluginCategory `yaml:"categories"`
}

// PluginCategory groups example invocations by scenario.
type PluginCategory struct {
	Name     string          `yaml:"name"`
	Examples []PluginExample `yaml:"examples"`
}

// PluginExample is one canned command with its description.
type PluginExample struct {
	Cmd  string `yaml:"cmd"`
	Desc string `yaml:"desc"`
}

// AllExamples flattens every category's examples in declaration order.
func (p ToolPlugin) AllExamples() []PluginExample {
	var examples []PluginExample
	for _, category := range p.Categories {
		examples = append(examples, category.Examples...)
	}
	return examples
}
