package passes

import m "gooze.dev/pkg/purebundle/internal/model"

// Pass is one rewrite over a module. Instances carry per-run state and are
// created fresh for every module.
type Pass interface {
	Name() m.PassName
	Apply(mod *m.Module, notes m.AnnotationSink, stats *m.Stats)
}
