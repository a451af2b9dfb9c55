package app

import "reflect"

// Plugin adds a slice of engine functionality to an App: components,
// resources, systems, a runner.
type Plugin interface {
	Build(a *App)
}

// Finisher is implemented by plugins with setup that has to wait until every
// plugin is built, such as starting background workers.
type Finisher interface {
	Finish(a *App) error
}

// PluginFunc adapts a function to Plugin. Function plugins may be added more
// than once.
type PluginFunc func(a *App)

func (f PluginFunc) Build(a *App) {
	f(a)
}

// Group is an ordered set of plugins added together.
type Group []Plugin

func (g Group) Build(a *App) {
	a.AddPlugins(g...)
}

// Set returns a copy of the group with the plugin of the same type as p
// replaced by p. Plugins of other types are kept in place; if no plugin of
// that type exists p is appended.
func (g Group) Set(p Plugin) Group {
	out := make(Group, 0, len(g)+1)
	replaced := false
	for _, existing := range g {
		if reflect.TypeOf(existing) == reflect.TypeOf(p) {
			out = append(out, p)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, p)
	}
	return out
}

// Disable returns a copy of the group without plugins of the same type as p.
func (g Group) Disable(p Plugin) Group {
	out := make(Group, 0, len(g))
	for _, existing := range g {
		if reflect.TypeOf(existing) != reflect.TypeOf(p) {
			out = append(out, existing)
		}
	}
	return out
}

func pluginName(p Plugin) string {
	t := reflect.TypeOf(p)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
