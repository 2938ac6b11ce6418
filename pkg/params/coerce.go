package params

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

func coerce(opt Option, value any) (any, error) {
	var (
		out any
		err error
	)
	switch opt.Type {
	case Int:
		out, err = cast.ToIntE(value)
	case Bool:
		out, err = toBool(value)
	default:
		out, err = cast.ToStringE(value)
	}
	if err != nil {
		return nil, fmt.Errorf("argument %s is of type %T and we were unable to convert to %s", opt.Name, value, opt.Type)
	}
	return out, nil
}

// toBool accepts the YAML 1.1 words Ansible users write on top of what
// strconv understands.
func toBool(value any) (bool, error) {
	if s, ok := value.(string); ok {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "yes", "y", "on":
			return true, nil
		case "no", "n", "off":
			return false, nil
		}
	}
	return cast.ToBoolE(value)
}
