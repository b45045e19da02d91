// Package log provides the leveled logger used by every pitchgraph package.
//
// The default implementation wraps github.com/kataras/golog and prefixes each
// line with "[pitchgraph] ". Levels are configured from the log.level setting
// through ParseLevel:
//
//	level, err := log.ParseLevel("debug")
//	if err != nil {
//		return err
//	}
//	log.SetLogLevel(level)
//	log.Info("listening on %s", addr)
//
// Components that need a logger take a Logger value; tests pass &NoOpLogger{}.
package log
