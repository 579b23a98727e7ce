package dispatch

import "strings"

// Method is the closed set of protocol operations the engine understands.
type Method int

const (
	MethodUnknown Method = iota
	MethodInitialize
	MethodPing
	MethodToolsList
	MethodToolsCall
)

var methodNames = map[string]Method{
	"initialize": MethodInitialize,
	"ping":       MethodPing,
	"tools/list": MethodToolsList,
	"tools/call": MethodToolsCall,
}

// ParseMethod maps a wire method name onto a Method.
func ParseMethod(name string) Method {
	if method, ok := methodNames[name]; ok {
		return method
	}
	return MethodUnknown
}

func (method Method) String() string {
	for name, candidate := range methodNames {
		if candidate == method {
			return name
		}
	}
	return "unknown"
}

// IsNotification reports whether name belongs to the notifications namespace.
func IsNotification(name string) bool {
	return strings.HasPrefix(name, "notifications/")
}
