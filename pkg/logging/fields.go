package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Takeoff field helpers for common scan attributes

func ComponentID(id string) Field {
	return String("component_id", id)
}

func LineTag(tag string) Field {
	return String("line_tag", tag)
}

func Reason(code string) Field {
	return String("reason", code)
}

func GroupLabel(label string) Field {
	return String("group", label)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Length(l float64) Field {
	return Float64("length", l)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
