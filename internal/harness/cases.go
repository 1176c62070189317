package harness

import (
	"bytes"
	_ "embed"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed cases.yaml
var defaultCases []byte

//go:embed schema.cue
var casesSchema string

// hexPrefix marks a byte string written as hex digits.
const hexPrefix = "hex:"

// Expectation kinds for k_memcmp results.
const (
	ExpectZero     = "zero"
	ExpectNonZero  = "nonzero"
	ExpectNegative = "negative"
	ExpectPositive = "positive"
)

// Bytes is a byte string from a case file. Plain YAML strings are taken as
// their raw bytes; strings starting with "hex:" are hex decoded.
type Bytes []byte

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Bytes) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	decoded, err := ParseBytes(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*b = decoded
	return nil
}

// String renders b for failure messages.
func (b Bytes) String() string {
	return fmt.Sprintf("%q", string(b))
}

// ParseBytes decodes a case-file byte string.
func ParseBytes(s string) (Bytes, error) {
	if !strings.HasPrefix(s, hexPrefix) {
		return Bytes(s), nil
	}
	decoded, err := hex.DecodeString(strings.TrimPrefix(s, hexPrefix))
	if err != nil {
		return nil, fmt.Errorf("invalid hex byte string %q: %w", s, err)
	}
	return Bytes(decoded), nil
}

// Cases holds the case tables for all four primitives.
type Cases struct {
	Strlen []StrlenCase `yaml:"strlen"`
	Memcmp []MemcmpCase `yaml:"memcmp"`
	Memcpy []MemcpyCase `yaml:"memcpy"`
	Memset []MemsetCase `yaml:"memset"`
}

// StrlenCase expects k_strlen(Input) == Want.
type StrlenCase struct {
	Input Bytes  `yaml:"input"`
	Want  uint32 `yaml:"want"`
}

// MemcmpCase compares A and B over N bytes.
// Exact, when set, takes precedence over Expect.
type MemcmpCase struct {
	A      Bytes  `yaml:"a"`
	B      Bytes  `yaml:"b"`
	N      int    `yaml:"n"`
	Expect string `yaml:"expect,omitempty"`
	Exact  *int32 `yaml:"exact,omitempty"`
}

// MemcpyCase copies Src into a zeroed destination of the same size.
// A nil N copies all of Src.
type MemcpyCase struct {
	Src Bytes `yaml:"src"`
	N   *int  `yaml:"n,omitempty"`
}

// MemsetCase fills a zeroed buffer of Size bytes with Value.
// A nil N fills the whole buffer.
type MemsetCase struct {
	Size  int   `yaml:"size"`
	Value int32 `yaml:"value"`
	N     *int  `yaml:"n,omitempty"`
}

// DefaultCases returns the built-in case tables.
func DefaultCases() *Cases {
	cases, err := ParseCases(defaultCases)
	if err != nil {
		panic(fmt.Sprintf("built-in case table is invalid: %v", err))
	}
	return cases
}

// LoadCases reads and validates a case file.
func LoadCases(path string) (*Cases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read case file: %w", err)
	}
	cases, err := ParseCases(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cases, nil
}

// ParseCases validates data against the case schema and decodes it.
func ParseCases(data []byte) (*Cases, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("case file is empty")
	}
	if err := validateSchema(raw); err != nil {
		return nil, err
	}

	var cases Cases
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cases); err != nil {
		return nil, fmt.Errorf("failed to decode cases: %w", err)
	}

	if err := validateCases(&cases); err != nil {
		return nil, fmt.Errorf("invalid cases: %w", err)
	}
	return &cases, nil
}

// validateSchema unifies the decoded document with #Cases.
func validateSchema(raw any) error {
	cctx := cuecontext.New()

	schema := cctx.CompileString(casesSchema, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("failed to compile case schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Cases"))

	val := cctx.Encode(raw)
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to encode cases: %w", err)
	}

	if err := def.Unify(val).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("case file does not match schema:\n%s", cueerrors.Details(err, nil))
	}
	return nil
}

// validateCases checks the constraints the schema cannot express.
func validateCases(c *Cases) error {
	if len(c.Strlen)+len(c.Memcmp)+len(c.Memcpy)+len(c.Memset) == 0 {
		return fmt.Errorf("no cases defined")
	}

	for i, tc := range c.Strlen {
		if bytes.IndexByte(tc.Input, 0) >= 0 {
			return fmt.Errorf("strlen[%d]: input must not contain a NUL byte", i)
		}
	}

	for i, tc := range c.Memcmp {
		if tc.Expect == "" && tc.Exact == nil {
			return fmt.Errorf("memcmp[%d]: expect or exact is required", i)
		}
		if tc.N > len(tc.A) || tc.N > len(tc.B) {
			return fmt.Errorf("memcmp[%d]: n=%d exceeds buffer length", i, tc.N)
		}
	}

	for i, tc := range c.Memcpy {
		if tc.N != nil && *tc.N > len(tc.Src) {
			return fmt.Errorf("memcpy[%d]: n=%d exceeds src length %d", i, *tc.N, len(tc.Src))
		}
	}

	for i, tc := range c.Memset {
		if tc.N != nil && *tc.N > tc.Size {
			return fmt.Errorf("memset[%d]: n=%d exceeds size %d", i, *tc.N, tc.Size)
		}
	}

	return nil
}
