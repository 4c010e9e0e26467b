package playerjs

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNoMatchingFunction is returned when the script contains no routine
	// recognizable as the signature cipher. It usually means the platform
	// changed the player's shape.
	ErrNoMatchingFunction = errors.New("no matching cipher function")
	// ErrUnsupportedOperation is returned when the cipher routine calls a
	// helper outside the known primitive set.
	ErrUnsupportedOperation = errors.New("unsupported cipher operation")
)

// The cipher routine is located structurally, never by name: a short function
// that splits its argument and calls two-argument helpers from a sibling
// object whose members are the reverse/splice/slice/swap primitives.
const (
	jsVarStr   = "[a-zA-Z_\\$][a-zA-Z_0-9]*"
	reverseStr = ":function\\(a\\)\\{" +
		"(?:return )?a\\.reverse\\(\\)" +
		"\\}"
	spliceStr = ":function\\(a,b\\)\\{" +
		"a\\.splice\\(0,b\\)" +
		"\\}"
	sliceStr = ":function\\(a,b\\)\\{" +
		"return a\\.slice\\(b\\)" +
		"\\}"
	swapStr = ":function\\(a,b\\)\\{" +
		"var c=a\\[0\\];a\\[0\\]=a\\[b(?:%a\\.length)?\\];a\\[b(?:%a\\.length)?\\]=c(?:;return a)?" +
		"\\}"
)

var (
	actionsObjRegexp = regexp.MustCompile(fmt.Sprintf(
		"(?:var|let|const)\\s+(%s)=\\{((?:(?:%s%s|%s%s|%s%s|%s%s),?\\n?)+)\\}\\s*;?",
		jsVarStr, jsVarStr, swapStr, jsVarStr, spliceStr, jsVarStr, sliceStr, jsVarStr, reverseStr))
	reverseKeyRegexp = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, reverseStr))
	spliceKeyRegexp  = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, spliceStr))
	sliceKeyRegexp   = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, sliceStr))
	swapKeyRegexp    = regexp.MustCompile(fmt.Sprintf("(?m)(?:^|,)(%s)%s", jsVarStr, swapStr))

	actionsFuncRegexps = []*regexp.Regexp{
		// function XX(a){...}
		regexp.MustCompile(fmt.Sprintf(
			"function(?:\\s+%s)?\\(a\\)\\{"+
				"a=a\\.split\\([^\\)]*\\);\\s*"+
				"((?:(?:a=)?%s(?:\\.%s|\\[[^\\]]+\\])\\(a,\\d+\\);?\\s*)+)"+
				"return a\\.join\\([^\\)]*\\)"+
				"\\}", jsVarStr, jsVarStr, jsVarStr)),
		// XX=function(a){...}
		regexp.MustCompile(fmt.Sprintf(
			"%s\\s*=\\s*function\\(a\\)\\{"+
				"a=a\\.split\\([^\\)]*\\);\\s*"+
				"((?:(?:a=)?%s(?:\\.%s|\\[[^\\]]+\\])\\(a,\\d+\\);?\\s*)+)"+
				"return a\\.join\\([^\\)]*\\)"+
				"\\}", jsVarStr, jsVarStr, jsVarStr)),
	}

	// Helper-body classifiers for scripts whose helper object does not match
	// the strict shape above (extra whitespace, reordered members).
	reverseBodyRegexp = regexp.MustCompile(`(?:return )?a\.reverse\(\)`)
	spliceBodyRegexp  = regexp.MustCompile(`a\.splice\(0,b\)`)
	sliceBodyRegexp   = regexp.MustCompile(`return a\.slice\(b\)`)
	swapBodyRegexp    = regexp.MustCompile(`var c=a\[0\];a\[0\]=a\[b(?:%a\.length)?\];a\[b(?:%a\.length)?\]=c(?:;return a)?`)

	nFuncNameRegexps = []*regexp.Regexp{
		regexp.MustCompile(`\.get\("n"\)\)&&\(b=([a-zA-Z0-9$]+)(?:\[(\d+)\])?\([a-zA-Z0-9]\)`),
		regexp.MustCompile(`b=String\.fromCharCode\(110\),c=a\.get\(b\)\)&&\(c=([a-zA-Z0-9$]+)(?:\[(\d+)\])?\([a-zA-Z0-9]\)`),
		regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]+)\([a-zA-Z0-9$]+\)`),
	}

	timestampRegexp = regexp.MustCompile(`(?:signatureTimestamp|sts):(\d+)`)
)

// Extract analyzes a player script and produces its cipher program. The
// signature operation list is mandatory; the n-transform source and the
// signature timestamp are carried when present.
func Extract(script []byte, playerVersion string) (*Program, error) {
	ops, err := parseSigOps(script)
	if err != nil {
		return nil, err
	}
	return &Program{
		PlayerVersion:      playerVersion,
		Ops:                ops,
		NFuncSource:        extractNFuncSource(script),
		SignatureTimestamp: extractTimestamp(script),
		BuiltAt:            time.Now(),
	}, nil
}

func parseSigOps(script []byte) ([]Op, error) {
	funcBody := findActionsFuncBody(script)
	if len(funcBody) == 0 {
		return nil, fmt.Errorf("%w: cipher routine not found", ErrNoMatchingFunction)
	}

	var obj string
	kinds := make(map[string]OpKind)
	if objMatch := actionsObjRegexp.FindSubmatch(script); len(objMatch) >= 3 {
		obj = string(objMatch[1])
		objBody := objMatch[2]
		for _, m := range reverseKeyRegexp.FindAllSubmatch(objBody, -1) {
			kinds[string(m[1])] = OpReverse
		}
		for _, m := range spliceKeyRegexp.FindAllSubmatch(objBody, -1) {
			kinds[string(m[1])] = OpSplice
		}
		for _, m := range sliceKeyRegexp.FindAllSubmatch(objBody, -1) {
			kinds[string(m[1])] = OpSplice
		}
		for _, m := range swapKeyRegexp.FindAllSubmatch(objBody, -1) {
			kinds[string(m[1])] = OpSwap
		}
	}

	calls, callObj, err := cipherCalls(funcBody, obj)
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		if kinds, err = classifyHelpers(script, callObj, calls); err != nil {
			return nil, err
		}
	}

	ops := make([]Op, 0, len(calls))
	for _, call := range calls {
		kind, ok := kinds[call.key]
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnsupportedOperation, callObj, call.key)
		}
		ops = append(ops, Op{Kind: kind, N: call.arg})
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: empty operation list", ErrNoMatchingFunction)
	}
	return ops, nil
}

func findActionsFuncBody(script []byte) []byte {
	for _, re := range actionsFuncRegexps {
		if m := re.FindSubmatch(script); len(m) > 1 {
			return m[1]
		}
	}
	return nil
}

type helperCall struct {
	key string
	arg int
}

// cipherCalls lists the helper invocations of the cipher routine in order.
// When obj is empty the object name is taken from the first invocation; calls
// against any other object are rejected.
func cipherCalls(funcBody []byte, obj string) ([]helperCall, string, error) {
	objPattern := regexp.QuoteMeta(obj)
	if obj == "" {
		objPattern = "(?:" + jsVarStr + ")"
	}
	re, err := regexp.Compile(fmt.Sprintf(
		`(?:a=)?(%s)(?:\.(%s)|\[(?:"(%s)"|'(%s)')\])\(a,(\d+)\)`,
		objPattern, jsVarStr, jsVarStr, jsVarStr))
	if err != nil {
		return nil, "", err
	}

	var calls []helperCall
	for _, m := range re.FindAllSubmatch(funcBody, -1) {
		name := string(m[1])
		if obj == "" {
			obj = name
		}
		if name != obj {
			continue
		}
		key := firstNonEmptySubmatch(m[2], m[3], m[4])
		arg, _ := strconv.Atoi(string(m[5]))
		calls = append(calls, helperCall{key: key, arg: arg})
	}
	if len(calls) == 0 {
		return nil, "", fmt.Errorf("%w: cipher routine has no helper calls", ErrNoMatchingFunction)
	}
	return calls, obj, nil
}

// classifyHelpers resolves each referenced helper's definition and assigns it
// a primitive kind by body shape. A helper whose body matches none of the
// known primitives makes the whole script unsupported.
func classifyHelpers(script []byte, obj string, calls []helperCall) (map[string]OpKind, error) {
	kinds := make(map[string]OpKind, len(calls))
	for _, call := range calls {
		if _, done := kinds[call.key]; done {
			continue
		}
		re, err := regexp.Compile(fmt.Sprintf(
			`(?:^|[{,\s])%s\s*:\s*function\([^)]*\)\{([^}]*)\}`,
			regexp.QuoteMeta(call.key)))
		if err != nil {
			return nil, err
		}
		m := re.FindSubmatch(script)
		if len(m) < 2 {
			return nil, fmt.Errorf("%w: helper %s.%s has no definition", ErrNoMatchingFunction, obj, call.key)
		}
		body := m[1]
		switch {
		case swapBodyRegexp.Match(body):
			kinds[call.key] = OpSwap
		case spliceBodyRegexp.Match(body):
			kinds[call.key] = OpSplice
		case sliceBodyRegexp.Match(body):
			kinds[call.key] = OpSplice
		case reverseBodyRegexp.Match(body):
			kinds[call.key] = OpReverse
		default:
			return nil, fmt.Errorf("%w: %s.%s", ErrUnsupportedOperation, obj, call.key)
		}
	}
	return kinds, nil
}

func extractNFuncSource(script []byte) string {
	name := findNFuncName(script)
	if name == "" {
		return ""
	}
	src, err := extractFunction(script, name)
	if err != nil {
		return ""
	}
	return src
}

func findNFuncName(script []byte) string {
	for _, re := range nFuncNameRegexps {
		m := re.FindSubmatch(script)
		if len(m) == 0 {
			continue
		}
		name := string(m[1])
		if len(m) > 2 && len(m[2]) > 0 {
			// The match is an array lookup; the real function name sits
			// inside the array literal.
			idx, err := strconv.Atoi(string(m[2]))
			if err != nil {
				continue
			}
			if resolved := resolveArrayEntry(script, name, idx); resolved != "" {
				return resolved
			}
			continue
		}
		return name
	}
	return ""
}

func resolveArrayEntry(script []byte, name string, idx int) string {
	re, err := regexp.Compile(`var\s+` + regexp.QuoteMeta(name) + `\s*=\s*\[(.+?)\]\s*[,;]`)
	if err != nil {
		return ""
	}
	m := re.FindSubmatch(script)
	if len(m) < 2 {
		return ""
	}
	entries := strings.Split(string(m[1]), ",")
	if idx < 0 || idx >= len(entries) {
		return ""
	}
	return strings.TrimSpace(entries[idx])
}

// extractFunction slices a complete function definition out of the script by
// counting braces, skipping string literals so embedded braces do not
// unbalance the count.
func extractFunction(script []byte, name string) (string, error) {
	name = strings.TrimSpace(name)
	defPatterns := [][]byte{
		[]byte(name + "=function("),
		[]byte(name + " = function("),
		[]byte("function " + name + "("),
	}
	start := -1
	for _, def := range defPatterns {
		start = bytes.Index(script, def)
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("function %s not defined", name)
	}

	pos := start + bytes.IndexByte(script[start:], '{') + 1
	var strChar byte
	for brackets := 1; brackets > 0; pos++ {
		if pos >= len(script) {
			return "", fmt.Errorf("unterminated body for function %s", name)
		}
		b := script[pos]
		switch b {
		case '{':
			if strChar == 0 {
				brackets++
			}
		case '}':
			if strChar == 0 {
				brackets--
			}
		case '`', '"', '\'':
			if pos > 1 && script[pos-1] == '\\' && script[pos-2] != '\\' {
				continue
			}
			if strChar == 0 {
				strChar = b
			} else if strChar == b {
				strChar = 0
			}
		}
	}
	return string(script[start:pos]), nil
}

func firstNonEmptySubmatch(groups ...[]byte) string {
	for _, g := range groups {
		if len(g) > 0 {
			return string(g)
		}
	}
	return ""
}

func extractTimestamp(script []byte) int {
	m := timestampRegexp.FindSubmatch(script)
	if len(m) < 2 {
		return 0
	}
	ts, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0
	}
	return ts
}
