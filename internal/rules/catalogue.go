package rules

// Rule groups of the built-in catalogue.
const (
	GroupLog             = "log"
	GroupKeywords        = "keywords"
	GroupPackage         = "package"
	GroupPackageKeywords = "package_keywords"
)

// Rule sets selectable from the CLI and config.
const (
	SetLog     = "log"
	SetPackage = "package"
	SetAll     = "all"
)

const (
	// EmailLoosePattern permits a literal '*' so masked addresses still hit.
	EmailLoosePattern = `[a-zA-Z0-9\*]+\@[a-zA-Z0-9]+\.[a-zA-Z]+`
	// EmailStrictPattern is the same shape without '*'.
	EmailStrictPattern = `[a-zA-Z0-9]+\@[a-zA-Z0-9]+\.[a-zA-Z]+`

	IDCardPattern = `(?<!\d)(\d{17}[Xx]|\d{18})(?!\d)`
	PhonePattern  = `(?<!\d)(1\d{10})(?!\d)`

	secretKeywords = `((P|p)((A|a)(S|s)(S|s))?(W|w)((O|o)(R|r))?(D|d)|(K|k)(E|e)(Y|y)|(E|e)(N|n)(C|c)(R|r)(Y|y)(P|p)(T|t)|(S|s)(E|e)(C|c)(R|r)(E|e)(T|t)|(A|a)(U|u)(T|t)(H|h)((O|o)(R|r)(I|i)(Z|z)(A|a)(T|t)(I|i)(O|o)(N|n))?)`
	secretNoKey    = `((P|p)((A|a)(S|s)(S|s))?(W|w)((O|o)(R|r))?(D|d)|(E|e)(N|n)(C|c)(R|r)(Y|y)(P|p)(T|t)|(S|s)(E|e)(C|c)(R|r)(E|e)(T|t)|(A|a)(U|u)(T|t)(H|h)((O|o)(R|r)(I|i)(Z|z)(A|a)(T|t)(I|i)(O|o)(N|n))?)`

	// QuotedSecretLoosePattern matches key=value assignments with optional quotes.
	QuotedSecretLoosePattern = secretKeywords + `\s?["']?(=|:)+\s?["']?[a-zA-Z0-9\@\.]+["']?`
	// QuotedSecretStrictPattern requires the value to be closed by the quote
	// that opened it.
	QuotedSecretStrictPattern = secretKeywords + `\s?["']?(=|:)+\s?(?<quote>["'])[a-zA-Z0-9\@\.]+\k<quote>`
)

// Default returns the built-in catalogue in evaluation order. The package
// keyword group is disabled by default: it is noisy on decompiled sources.
func Default() []PatternRule {
	return []PatternRule{
		{ID: "phone", Group: GroupLog, Pattern: PhonePattern, Enabled: true},
		{ID: "email", Group: GroupLog, Pattern: EmailLoosePattern, Validator: EmailStrict, Enabled: true},
		{ID: "id_card", Group: GroupLog, Pattern: IDCardPattern, Validator: IDChecksum, Enabled: true},
		{ID: "passport", Group: GroupLog, Pattern: `((P|p)ass(P|p)ort((N|n)o(s|S)?)?(\s)?"?(\s)?\:(\s)?(\[)?"?[a-zA-Z0-9]+"?[,;]+)`, Enabled: true},

		{ID: "kw_password", Group: GroupKeywords, Pattern: `(P|p)(A|a)(S|s)(S|s)(W|w)((O|o)(R|r))?(D|d)`, Enabled: true},
		{ID: "kw_aes_key", Group: GroupKeywords, Pattern: `(A|a)(E|e)(S|s)_?(K|k)(E|e)(Y|y)`, Enabled: true},
		{ID: "kw_app_key", Group: GroupKeywords, Pattern: `(A|a)(P|p)(P|p)_?(K|k)(E|e)(Y|y)`, Enabled: true},
		{ID: "kw_s_key", Group: GroupKeywords, Pattern: `(S|s)_?(K|k)(E|e)(Y|y)`, Enabled: true},
		{ID: "kw_access_token", Group: GroupKeywords, Pattern: `(A|a)ccess_?(T|t)oken`, Enabled: true},
		{ID: "kw_token", Group: GroupKeywords, Pattern: `(T|t)oken\"\:\t`, Enabled: true},
		{ID: "kw_secret", Group: GroupKeywords, Pattern: `(S|s)(E|e)(C|c)(R|r)(E|e)(T|t)\"\:\t`, Enabled: true},
		{ID: "kw_certificate", Group: GroupKeywords, Pattern: `(C|c)ertificate`, Enabled: true},
		{ID: "kw_id_card", Group: GroupKeywords, Pattern: `(I|i)(D|d)_?(C|c)ard`, Enabled: true},

		{ID: "pkg_assignment", Group: GroupPackage, Pattern: QuotedSecretLoosePattern, Validator: QuotedSecretOverride, Enabled: true},
		{ID: "pkg_value_attr", Group: GroupPackage, Pattern: secretKeywords + `["']?\s?value(=|:)+["']?[a-zA-Z0-9\@\.]+["']?`, Enabled: true},
		{ID: "pkg_xml_element", Group: GroupPackage, Pattern: `(` + secretKeywords + `["']?\>)+\s?[a-zA-Z0-9\@\.]+\<["']?`, Enabled: true},
		{ID: "pkg_setter", Group: GroupPackage, Pattern: `(S|s)(E|e)(T|t)([a-zA-Z0-9]+)?` + secretKeywords + `\(\s?["']+[a-zA-Z0-9\@\.]+["']+\s?\)`, Enabled: true},
		{ID: "pkg_arg_value_first", Group: GroupPackage, Pattern: `["']+[a-zA-Z0-9\@\.]+["']+\s?\,\s?` + secretNoKey + `+`, Enabled: true},
		{ID: "pkg_arg_key_first", Group: GroupPackage, Pattern: secretNoKey + `+\s?\,\s?["']+[a-zA-Z0-9\@\.]+["']+`, Enabled: true},

		{ID: "pkg_kw_jwt_algorithm", Group: GroupPackageKeywords, Pattern: `(J|j)(W|w)(T|t)\.(A|a)(L|l)(G|g)(O|o)(R|r)(I|i)(T|t)(H|h)(M|m)`},
		{ID: "pkg_kw_secret", Group: GroupPackageKeywords, Pattern: `(S|s)(E|e)(C|c)(R|r)(E|e)(T|t)`},
		{ID: "pkg_kw_password", Group: GroupPackageKeywords, Pattern: `(P|p)(A|a)(S|s)(S|s)(W|w)((O|o)(R|r))?(D|d)`},
		{ID: "pkg_kw_aes_key", Group: GroupPackageKeywords, Pattern: `(A|a)(E|e)(S|s)_?(K|k)(E|e)(Y|y)`},
	}
}

// Set returns the catalogue rules of a named rule set.
func Set(name string) []PatternRule {
	all := Default()
	switch name {
	case SetLog:
		return ByGroup(all, GroupLog, GroupKeywords)
	case SetPackage:
		return ByGroup(all, GroupPackage, GroupPackageKeywords)
	}
	return all
}
