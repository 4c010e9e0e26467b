package playerjs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// OpKind enumerates the primitive transforms the platform's player scripts
// compose into a signature cipher.
type OpKind uint8

const (
	// OpReverse reverses the whole signature.
	OpReverse OpKind = iota
	// OpSplice drops the leading N characters.
	OpSplice
	// OpSwap exchanges the first character with the one at N modulo length.
	OpSwap
)

func (k OpKind) String() string {
	switch k {
	case OpReverse:
		return "reverse"
	case OpSplice:
		return "splice"
	case OpSwap:
		return "swap"
	default:
		return fmt.Sprintf("opkind(%d)", uint8(k))
	}
}

// Op is one step of a cipher program.
type Op struct {
	Kind OpKind
	N    int
}

// Program is the transform logic extracted from one player script version:
// the signature operation list, the throttling-parameter function source, and
// the signature timestamp the API expects back. Applying a Program never
// re-reads the script; signature application in particular is plain string
// manipulation.
type Program struct {
	PlayerVersion      string
	Ops                []Op
	NFuncSource        string
	SignatureTimestamp int
	BuiltAt            time.Time
}

var (
	// ErrVersionMismatch is returned when a program is asked to transform a
	// signature that belongs to a different player version.
	ErrVersionMismatch = errors.New("player version mismatch")
	// ErrNoNFunction is returned by ApplyN when the script the program was
	// built from had no recognizable throttling transform.
	ErrNoNFunction = errors.New("n-transform function not found")
	// ErrTransformFailed is returned when the throttling transform ran but
	// signalled that it could not decode its input.
	ErrTransformFailed = errors.New("n-transform signalled failure")
)

// The player script returns its input prefixed with this marker when the
// n-transform throws internally.
const enhancedExceptPrefix = "enhanced_except"

// ApplySig runs the signature operations against sig. The caller's
// playerVersion must match the version the program was extracted from;
// mismatches fail fast instead of producing a silently wrong signature.
func (p *Program) ApplySig(playerVersion, sig string) (string, error) {
	if playerVersion != p.PlayerVersion {
		return "", fmt.Errorf("%w: program built from %q, signature from %q",
			ErrVersionMismatch, p.PlayerVersion, playerVersion)
	}
	bs := []byte(sig)
	for _, op := range p.Ops {
		bs = op.apply(bs)
	}
	return string(bs), nil
}

// ApplyN runs the throttling transform for one n parameter inside sb. Every
// invocation evaluates the extracted function in a fresh interpreter, so no
// state leaks between calls.
func (p *Program) ApplyN(ctx context.Context, sb Sandbox, n string) (string, error) {
	if p.NFuncSource == "" {
		return "", ErrNoNFunction
	}
	out, err := sb.EvalFunction(ctx, p.NFuncSource, n)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(out, enhancedExceptPrefix) {
		return "", fmt.Errorf("%w: %s", ErrTransformFailed, out)
	}
	return out, nil
}

func (op Op) apply(bs []byte) []byte {
	switch op.Kind {
	case OpReverse:
		l, r := 0, len(bs)-1
		for l < r {
			bs[l], bs[r] = bs[r], bs[l]
			l++
			r--
		}
		return bs
	case OpSplice:
		if op.N < 0 || op.N > len(bs) {
			return bs
		}
		return bs[op.N:]
	case OpSwap:
		if len(bs) == 0 {
			return bs
		}
		pos := op.N % len(bs)
		bs[0], bs[pos] = bs[pos], bs[0]
		return bs
	default:
		return bs
	}
}
