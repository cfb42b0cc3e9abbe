package shader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/common"
)

// ProgramID addresses a Program inside its Registry. IDs are stable for the registry's lifetime.
type ProgramID int

// program is the implementation of the Program interface.
type program struct {
	reg *registry
	id  ProgramID
	key string

	deps   []FileID
	built  bool
	handle uint32

	// slot is written only by Reload and Clean
	slot *HandleSlot
}

// Program links a set of ShaderFiles into a usable backend program and publishes the result
// through a HandleSlot that consumers may hold across rebuilds.
type Program interface {
	HandleSource

	// ID returns the program's stable identifier within its registry.
	//
	// Returns:
	//   - ProgramID: the identifier
	ID() ProgramID

	// Key returns the name the program was registered under.
	//
	// Returns:
	//   - string: the program key
	Key() string

	// IsBuilt reports whether the program is linked and its backend handle is live.
	//
	// Returns:
	//   - bool: true if linked
	IsBuilt() bool

	// Slot returns the cell the program publishes its Handle into. The pointer is stable for the
	// program's lifetime and remains safe to read afterwards.
	//
	// Returns:
	//   - *HandleSlot: the handle cell
	Slot() *HandleSlot

	// Dependencies returns the shader files this program links, in registration order.
	//
	// Returns:
	//   - []FileID: the dependency identifiers
	Dependencies() []FileID

	// AppendDependency registers f as a dependency and this program as a dependent of f.
	// Registering the same file twice is a no-op.
	//
	// Parameters:
	//   - f: a shader file from the same registry
	//
	// Returns:
	//   - bool: true if the dependency was added
	//   - error: ErrForeignResource if f belongs to another registry
	AppendDependency(f ShaderFile) (bool, error)

	// Reload cleans the program, then links every dependency into a new backend program.
	// If any dependency is not built nothing is created and the handle stays unusable.
	//
	// Returns:
	//   - error: ErrDependencyNotBuilt, or a *BuildError wrapping ErrBuildFailure when linking fails
	Reload() error

	// Clean marks the handle unusable and releases the backend program. Does nothing if not built.
	Clean()
}

var _ Program = &program{}

func (p *program) ID() ProgramID {
	return p.id
}

func (p *program) Key() string {
	return p.key
}

func (p *program) IsBuilt() bool {
	return p.built
}

func (p *program) Handle() Handle {
	return p.slot.Handle()
}

func (p *program) Slot() *HandleSlot {
	return p.slot
}

func (p *program) Dependencies() []FileID {
	return append([]FileID(nil), p.deps...)
}

func (p *program) AppendDependency(f ShaderFile) (bool, error) {
	sf, ok := f.(*shaderFile)
	if !ok || sf == nil || sf.reg != p.reg {
		return false, fmt.Errorf("%w: cannot add file to program %q", ErrForeignResource, p.key)
	}
	var added bool
	p.deps, added = common.AppendUnique(p.deps, sf.id)
	if added {
		sf.addDependent(p.id)
	}
	return added, nil
}

func (p *program) Reload() error {
	p.Clean()

	for _, id := range p.deps {
		if f := p.reg.files[id]; !f.built {
			return fmt.Errorf("%w: program %q needs %s", ErrDependencyNotBuilt, p.key, f.path)
		}
	}

	b := p.reg.backend
	id := b.CreateProgram()
	for _, dep := range p.deps {
		b.AttachShader(id, p.reg.files[dep].handle)
	}
	if ok, log := b.LinkProgram(id); !ok {
		p.reg.diagf("Error: Can't link %s\n%s\n", p.key, log)
		b.DeleteProgram(id)
		common.Logger().Warn("shader program link failed", "program", p.key)
		return &BuildError{Name: p.key, Stage: "link", Log: log}
	}

	for name, binding := range p.reg.blocks {
		b.UniformBlockBinding(id, name, binding)
	}

	p.handle = id
	p.built = true
	p.slot.publish(id)
	common.Logger().Debug("shader program linked", "program", p.key, "handle", id)
	return nil
}

func (p *program) Clean() {
	if !p.built {
		return
	}
	p.slot.revoke()
	p.reg.backend.DeleteProgram(p.handle)
	p.handle = 0
	p.built = false
}
