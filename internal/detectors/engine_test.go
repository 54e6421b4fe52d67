package detectors

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sensigrep/sensigrep/internal/rules"
	"github.com/sensigrep/sensigrep/internal/textdecode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func ruleByID(t *testing.T, id string) rules.PatternRule {
	t.Helper()
	for _, r := range rules.Default() {
		if r.ID == id {
			r.Enabled = true
			return r
		}
	}
	t.Fatalf("no rule %q", id)
	return rules.PatternRule{}
}

func engineFor(t *testing.T, ids ...string) *Engine {
	t.Helper()
	var rs []rules.PatternRule
	for _, id := range ids {
		rs = append(rs, ruleByID(t, id))
	}
	e, errs := Compile(rs, 0)
	require.Empty(t, errs)
	require.Equal(t, len(ids), e.Len())
	return e
}

func textInput(path, s string) Input {
	return Input{Path: path, Text: textdecode.Text{Content: s, Encoding: textdecode.UTF8}, Raw: []byte(s)}
}

func TestCatalogueCompiles(t *testing.T) {
	all := rules.Default()
	for i := range all {
		all[i].Enabled = true
	}
	e, errs := Compile(all, 0)
	require.Empty(t, errs)
	assert.Equal(t, len(all), e.Len())
}

func TestPhoneMatchWithContext(t *testing.T) {
	e := engineFor(t, "phone")
	ms, errs := e.Run(textInput("a.log", "first\ncall 13812345678 now\nlast\n"))
	require.Empty(t, errs)
	require.Len(t, ms, 1)
	assert.Equal(t, "a.log", ms[0].Path)
	assert.Equal(t, 2, ms[0].Line)
	assert.Equal(t, "13812345678", ms[0].Match)
	assert.Equal(t, "first\ncall 13812345678 now\nlast", ms[0].Context)
	assert.Equal(t, "phone", ms[0].RuleID)
}

func TestPhoneNotInsideLongerNumber(t *testing.T) {
	e := engineFor(t, "phone")
	ms, _ := e.Run(textInput("a.log", "order 9138123456789"))
	assert.Empty(t, ms)
}

func TestFirstMatchPerLine(t *testing.T) {
	e := engineFor(t, "phone")
	ms, _ := e.Run(textInput("a.log", "13812345678 and 13912345678"))
	require.Len(t, ms, 1)
	assert.Equal(t, "13812345678", ms[0].Match)
}

func TestEmailValidator(t *testing.T) {
	e := engineFor(t, "email")

	ms, _ := e.Run(textInput("a.log", "contact a.b*@x.com"))
	require.Len(t, ms, 1, "masked address is kept")
	assert.Equal(t, "b*@x.com", ms[0].Match)

	ms, _ = e.Run(textInput("a.log", "user alice@example.com"))
	require.Len(t, ms, 1)
	assert.Equal(t, "alice@example.com", ms[0].Match)

	ms, _ = e.Run(textInput("a.log", "x a*b@y.com"))
	assert.Empty(t, ms, "loose and strict spans disagree")
}

func TestIDCardValidator(t *testing.T) {
	e := engineFor(t, "id_card")

	ms, _ := e.Run(textInput("a.log", "id=110101199003070476"))
	require.Len(t, ms, 1)
	assert.Equal(t, "110101199003070476", ms[0].Match)

	ms, _ = e.Run(textInput("a.log", "id=11010119900307002X"))
	require.Len(t, ms, 1)

	ms, _ = e.Run(textInput("a.log", "id=110101199003070477"))
	assert.Empty(t, ms, "bad checksum")
}

func TestQuotedSecretOverride(t *testing.T) {
	e := engineFor(t, "pkg_assignment")

	in := textInput("App.class", `password = s3cret`)
	ms, _ := e.Run(in)
	require.Len(t, ms, 1, "plain sources use the loose pattern")

	in.FromClass = true
	ms, _ = e.Run(in)
	assert.Empty(t, ms, "decompiled sources need quotes on both sides")

	in = textInput("App.class", `password = "s3cret"`)
	in.FromClass = true
	ms, _ = e.Run(in)
	require.Len(t, ms, 1)
	assert.Equal(t, `password = "s3cret"`, ms[0].Match)

	in = textInput("App.class", `password="abc'`)
	in.FromClass = true
	ms, _ = e.Run(in)
	assert.Empty(t, ms, "closing quote must match the opening one")

	in = textInput("App.class", `password='abc'`)
	in.FromClass = true
	ms, _ = e.Run(in)
	assert.Len(t, ms, 1)
}

func TestRuleEvalTimeout(t *testing.T) {
	e, errs := Compile([]rules.PatternRule{
		{ID: "evil", Pattern: `(a+)+$`, Enabled: true},
		ruleByID(t, "phone"),
	}, 10*time.Millisecond)
	require.Empty(t, errs)

	in := textInput("x", strings.Repeat("a", 40)+"! 13812345678")
	ms, err := e.RunRule(0, in)
	assert.Empty(t, ms)
	require.ErrorIs(t, err, ErrRuleEval)
	var re *RuleError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "evil", re.RuleID)
	assert.Contains(t, err.Error(), "evil: rule evaluation failed on x")

	ms, evalErrs := e.Run(in)
	require.Len(t, ms, 1, "other rules still run")
	assert.Equal(t, "phone", ms[0].RuleID)
	require.Len(t, evalErrs, 1)
	assert.ErrorIs(t, evalErrs[0], ErrRuleEval)
}

func TestRuleEvalRetriesOnGBK(t *testing.T) {
	e, errs := Compile([]rules.PatternRule{
		{ID: "retry", Pattern: `((a+)+$)|(x\d+)`, Enabled: true},
	}, 10*time.Millisecond)
	require.Empty(t, errs)

	in := Input{
		Path: "x",
		Text: textdecode.Text{Content: strings.Repeat("a", 40) + "!", Encoding: textdecode.UTF8},
		Raw:  []byte("x123"),
	}
	ms, err := e.RunRule(0, in)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "x123", ms[0].Match)
}

func TestGBKDecodedText(t *testing.T) {
	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("手机号：13812345678"))
	require.NoError(t, err)
	text, err := textdecode.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, textdecode.GBK, text.Encoding)

	e := engineFor(t, "phone")
	ms, errs := e.Run(Input{Path: "gbk.log", Text: text, Raw: raw})
	require.Empty(t, errs)
	require.Len(t, ms, 1)
	assert.Equal(t, "13812345678", ms[0].Match)
	assert.Equal(t, "\n手机号：13812345678\n", ms[0].Context)
}

func TestCompileErrorIsIsolated(t *testing.T) {
	rs := []rules.PatternRule{
		{ID: "broken", Pattern: `(unclosed`, Enabled: true},
		ruleByID(t, "phone"),
		{ID: "off", Pattern: `(also broken`},
	}
	e, errs := Compile(rs, 0)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrRuleCompile)
	assert.Contains(t, errs[0].Error(), "broken")
	require.Equal(t, 1, e.Len())
	assert.Equal(t, "phone", e.Rule(0).ID)

	ms, _ := e.Run(textInput("a.log", "13812345678"))
	assert.Len(t, ms, 1)
}

func TestRunKeepsRuleOrder(t *testing.T) {
	e := engineFor(t, "kw_password", "phone")
	ms, _ := e.Run(textInput("a.log", "13812345678\npassword=x"))
	require.Len(t, ms, 2)
	assert.Equal(t, "kw_password", ms[0].RuleID)
	assert.Equal(t, 2, ms[0].Line)
	assert.Equal(t, "phone", ms[1].RuleID)
}
