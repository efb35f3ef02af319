package interp

import (
	"context"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a semantic version string that can be matched against
// requirements such as ">=1.2".
type Version struct {
	objectKind `json:"-" yaml:"-"`

	Value string `json:"value" yaml:"value"`
}

func (*Version) ObjectName() string { return "Version" }
func (v *Version) String() string   { return v.Value }

func (v *Version) equal(o Object) bool { return sameContents(v, o) }

func (v *Version) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return versionMethods.dispatch(ctx, in, v, v.ObjectName(), c)
}

var versionMethods = methodTable[*Version]{
	"version_compare": func(v *Version, _ context.Context, _ *Interpreter, c *Call) (Value, error) {
		req, err := c.stringArg(0)
		if err != nil {
			return nil, err
		}

		ok, err := versionCompare(v.Value, req)
		if err != nil {
			return nil, err
		}

		return Boolean(ok), nil
	},
}

// canonical converts a version to the form semver expects: "1.2" becomes
// "v1.2.0".
func canonical(version string) (string, error) {
	v := strings.TrimSpace(version)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}

	if !semver.IsValid(v) {
		return "", runtimeErrorf("Invalid version: '%s'", version)
	}

	return semver.Canonical(v), nil
}

var requirementOps = []string{">=", "<=", "!=", "==", ">", "<"}

// versionCompare reports whether version satisfies a requirement made of an
// optional operator and a version. No operator means "==".
func versionCompare(version, requirement string) (bool, error) {
	req := strings.TrimSpace(requirement)
	op := "=="

	for _, candidate := range requirementOps {
		if strings.HasPrefix(req, candidate) {
			op, req = candidate, req[len(candidate):]

			break
		}
	}

	have, err := canonical(version)
	if err != nil {
		return false, err
	}

	want, err := canonical(req)
	if err != nil {
		return false, err
	}

	cmp := semver.Compare(have, want)

	switch op {
	case ">=":
		return cmp >= 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case "<":
		return cmp < 0, nil
	case "!=":
		return cmp != 0, nil
	default:
		return cmp == 0, nil
	}
}
