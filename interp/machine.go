package interp

import (
	"context"

	"github.com/ardnew/gomeson/platform"
)

// Machine describes the build or host machine.
type Machine struct {
	objectKind `json:"-" yaml:"-"`

	platform.Machine
}

func (*Machine) ObjectName() string { return "Machine" }

func (m *Machine) String() string {
	return m.System + "-" + m.CPUFamily
}

func (m *Machine) equal(o Object) bool { return sameContents(m, o) }

func (m *Machine) call(ctx context.Context, in *Interpreter, c *Call) (Value, error) {
	return machineMethods.dispatch(ctx, in, m, m.ObjectName(), c)
}

func machineField(get func(*Machine) string) method[*Machine] {
	return func(m *Machine, _ context.Context, _ *Interpreter, _ *Call) (Value, error) {
		return String(get(m)), nil
	}
}

var machineMethods = methodTable[*Machine]{
	"system":     machineField(func(m *Machine) string { return m.System }),
	"cpu_family": machineField(func(m *Machine) string { return m.CPUFamily }),
	"cpu":        machineField(func(m *Machine) string { return m.CPU }),
	"endian":     machineField(func(m *Machine) string { return m.Endian }),
}

func buildMachine(in *Interpreter) (*Machine, error) {
	m, err := in.rt.BuildMachine()
	if err != nil {
		return nil, runtimeErrorf("Failed to detect build machine: %w", err)
	}

	return &Machine{Machine: m}, nil
}

// hostMachine returns the machine being built for. A cross file's
// [host_machine] section overrides the detected values.
func hostMachine(in *Interpreter) (*Machine, error) {
	m, err := in.rt.HostMachine()
	if err != nil {
		return nil, runtimeErrorf("Failed to detect host machine: %w", err)
	}

	if in.cross == nil {
		return &Machine{Machine: m}, nil
	}

	section, ok := in.cross.Section("host_machine")
	if !ok {
		return &Machine{Machine: m}, nil
	}

	for key, field := range map[string]*string{
		"system":     &m.System,
		"cpu_family": &m.CPUFamily,
		"cpu":        &m.CPU,
		"endian":     &m.Endian,
	} {
		if v, ok := section.Get(key); ok {
			*field = v.String()
		}
	}

	return &Machine{Machine: m}, nil
}
