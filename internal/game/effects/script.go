package effects

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// Effect scripts are the text form of a Program:
//
//	damage 8; status foe vulnerable 2
//	repeat 3 { damage 10 }
//	repeat energy { damage 5 }; spend_energy
type script struct {
	Stmts []*stmt `parser:"( @@ ';'? )*"`
}

type stmt struct {
	Repeat *repeatStmt `parser:"  @@"`
	Status *statusStmt `parser:"| @@"`
	Simple *simpleStmt `parser:"| @@"`
}

type repeatStmt struct {
	PerEnergy bool    `parser:"'repeat' ( @'energy'"`
	Times     int     `parser:"        | @Int )"`
	Body      *script `parser:"'{' @@ '}'"`
}

type statusStmt struct {
	Target string `parser:"'status' @( 'self' | 'foe' )"`
	Name   string `parser:"@Ident"`
	Amount int    `parser:"@Int"`
}

type simpleStmt struct {
	Op     string `parser:"@Ident"`
	Amount *int   `parser:"@Int?"`
}

var scriptParser = participle.MustBuild[script]()

// Parse compiles an effect script into a validated Program.
func Parse(src string) (Program, error) {
	ast, err := scriptParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("parse effect %q: %w", src, err)
	}
	prog, err := ast.compile()
	if err != nil {
		return nil, fmt.Errorf("compile effect %q: %w", src, err)
	}
	if err := prog.Validate(); err != nil {
		return nil, fmt.Errorf("validate effect %q: %w", src, err)
	}
	return prog, nil
}

// MustParse is like Parse but panics on error. It is meant for catalogs
// compiled into the binary.
func MustParse(src string) Program {
	prog, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return prog
}

func (s *script) compile() (Program, error) {
	if s == nil {
		return nil, nil
	}
	prog := make(Program, 0, len(s.Stmts))
	for _, st := range s.Stmts {
		in, err := st.compile()
		if err != nil {
			return nil, err
		}
		prog = append(prog, in)
	}
	return prog, nil
}

func (st *stmt) compile() (Instruction, error) {
	switch {
	case st.Repeat != nil:
		body, err := st.Repeat.Body.compile()
		if err != nil {
			return Instruction{}, err
		}
		if st.Repeat.PerEnergy {
			return RepeatPerEnergy(body...), nil
		}
		return Repeat(st.Repeat.Times, body...), nil
	case st.Status != nil:
		return ApplyStatus(Target(st.Status.Target), st.Status.Name, st.Status.Amount), nil
	default:
		op := Op(st.Simple.Op)
		if op == OpRepeat || op == OpStatus {
			return Instruction{}, fmt.Errorf("malformed %s statement", op)
		}
		hasAmount := st.Simple.Amount != nil
		if hasAmount != op.takesAmount() {
			if hasAmount {
				return Instruction{}, fmt.Errorf("%s takes no amount", op)
			}
			return Instruction{}, fmt.Errorf("%s requires an amount", op)
		}
		in := Instruction{Op: op}
		if hasAmount {
			in.Amount = *st.Simple.Amount
		}
		return in, nil
	}
}
