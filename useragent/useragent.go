package useragent

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"runtime/debug"
	"strings"
)

// Format templates. Placeholders are written as {name} and filled by
// [Generate] from runtime information and caller-provided options.
const (
	// FormatLibs identifies the Go runtime and this library.
	FormatLibs = "{go_impl}/{go_ver} Hostbound/{lib_ver}"

	// FormatBasic prefixes FormatLibs with the running program's name and version.
	FormatBasic = "{script}/{script_ver} " + FormatLibs

	// FormatScriptOS includes the operating system and architecture.
	FormatScriptOS = "{script}/{script_ver} ({os_name}; {arch}) " + FormatLibs

	// FormatScriptURL includes a contact URL.
	FormatScriptURL = "{script}/{script_ver} ({url}) " + FormatLibs

	// FormatScriptContact includes a contact URL and email address.
	FormatScriptContact = "{script}/{script_ver} ({url}; {email}) " + FormatLibs

	// FormatScriptURLOS includes a contact URL plus OS information.
	FormatScriptURLOS = "{script}/{script_ver} ({url}; {os_name}; {arch}) " + FormatLibs

	// FormatScriptContactOS is the most complete format: contact URL, email,
	// and OS information. It is the default used by the client.
	FormatScriptContactOS = "{script}/{script_ver} ({url}; {email}; {os_name}; {arch}) " + FormatLibs

	// FormatFirefox imitates a desktop Firefox browser.
	FormatFirefox = "Mozilla/5.0 ({os_info}; rv:{firefox_ver}) Gecko/20100101 Firefox/{firefox_ver}"

	// FormatChrome imitates a desktop Chrome browser.
	FormatChrome = "Mozilla/5.0 ({os_info}) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/{chrome_ver} Safari/537.36"
)

// DefaultFormat is used when no format is specified.
const DefaultFormat = FormatScriptContactOS

const (
	defaultFirefoxVersion = "80.0"
	defaultChromeVersion  = "85.0.4183.83"

	modulePath      = "github.com/hostbound/hostbound"
	fallbackVersion = "0.1.0"
)

// osSummaries maps runtime.GOOS to the browser-style platform strings
// used by the Firefox/Chrome templates.
var osSummaries = map[string]string{
	"windows": "Windows NT 10.0; Win64; x64",
	"linux":   "X11; Linux x86_64",
	"darwin":  "Macintosh; Intel Mac OS X 10.15",
}

var placeholderRE = regexp.MustCompile(`\{([a-z_]+)\}`)

// Option customizes the values used by [Generate].
type Option func(*settings)

type settings struct {
	values      map[string]string
	noDowngrade bool
}

// WithScript overrides the program name and version. By default the name is
// derived from os.Args[0] and the version from the binary's build info.
func WithScript(name, version string) Option {
	return func(s *settings) {
		s.values["script"] = name
		s.values["script_ver"] = version
	}
}

// WithContact sets the contact URL and email used by the contact-bearing
// formats. Either value may be empty.
func WithContact(url, email string) Option {
	return func(s *settings) {
		s.values["url"] = url
		s.values["email"] = email
	}
}

// WithValue overrides or adds an arbitrary placeholder value.
func WithValue(key, value string) Option {
	return func(s *settings) {
		s.values[key] = value
	}
}

// WithFirefoxVersion overrides the Firefox version used by [FormatFirefox].
func WithFirefoxVersion(version string) Option {
	return func(s *settings) {
		s.values["firefox_ver"] = version
	}
}

// WithChromeVersion overrides the Chrome version used by [FormatChrome].
func WithChromeVersion(version string) Option {
	return func(s *settings) {
		s.values["chrome_ver"] = version
	}
}

// WithNoDowngrade disables the automatic fallback to a less detailed format
// when contact information is unavailable.
func WithNoDowngrade() Option {
	return func(s *settings) {
		s.noDowngrade = true
	}
}

// Generate builds a User-Agent string from the given format template and the
// available runtime information. Contact-bearing formats downgrade to less
// detailed ones when the URL/email are not provided, unless disabled via
// [WithNoDowngrade]. Unresolved placeholders render as empty strings.
func Generate(format string, opts ...Option) string {
	s := settings{values: defaultValues()}
	for _, opt := range opts {
		opt(&s)
	}

	if !s.noDowngrade {
		format = downgrade(format, s.values)
	}

	return placeholderRE.ReplaceAllStringFunc(format, func(match string) string {
		return s.values[match[1:len(match)-1]]
	})
}

// downgrade steps a contact-bearing format down to the richest variant that
// can still be fully populated. An email stands in for a missing URL.
func downgrade(format string, values map[string]string) string {
	url, email := values["url"], values["email"]

	if format == FormatScriptContactOS && (url == "" || email == "") {
		format = FormatScriptURLOS
	}
	if url == "" && email != "" {
		values["url"] = email
	}
	if url == "" && email == "" && format == FormatScriptURLOS {
		format = FormatScriptOS
	}

	return format
}

func defaultValues() map[string]string {
	name, version := scriptInfo()

	return map[string]string{
		"script":      name,
		"script_ver":  version,
		"url":         "",
		"email":       "",
		"os_name":     osName(),
		"os_info":     osInfo(),
		"arch":        archName(),
		"go_impl":     "Go",
		"go_ver":      strings.TrimPrefix(runtime.Version(), "go"),
		"lib_ver":     libVersion(),
		"firefox_ver": envOr("FIREFOX_VERSION", defaultFirefoxVersion),
		"chrome_ver":  envOr("CHROME_VERSION", defaultChromeVersion),
	}
}

// scriptInfo identifies the running program, mirroring what a server
// operator would want to see in their access logs.
func scriptInfo() (name, version string) {
	name = strings.TrimSuffix(filepath.Base(os.Args[0]), ".exe")
	if name == "" || name == "." {
		name = "hostbound"
	}

	version = "1.0"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		version = bi.Main.Version
	}

	return name, version
}

// libVersion resolves this library's own version from the consuming
// binary's build info, falling back to a static default.
func libVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return fallbackVersion
	}

	for _, dep := range bi.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}

	return fallbackVersion
}

func osName() string {
	switch runtime.GOOS {
	case "windows":
		return "Windows"
	case "darwin":
		return "Darwin"
	case "linux":
		return "Linux"
	default:
		return runtime.GOOS
	}
}

func osInfo() string {
	if info, ok := osSummaries[runtime.GOOS]; ok {
		return info
	}

	return osSummaries["linux"]
}

func archName() string {
	switch runtime.GOARCH {
	case "amd64":
		return "x64"
	case "386":
		return "x86"
	default:
		return runtime.GOARCH
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
