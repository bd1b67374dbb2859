// Package useragent generates User-Agent header values from named format
// templates and runtime information.
//
// # Usage
//
// Generate a default User-Agent identifying the running program, the
// operating system, and this library:
//
//	ua := useragent.Generate(useragent.DefaultFormat)
//
// Provide contact information so server operators can reach you:
//
//	ua := useragent.Generate(useragent.FormatScriptContactOS,
//		useragent.WithContact("https://example.org/myapp", "me@example.org"),
//	)
//
// When contact details are missing, contact-bearing formats automatically
// downgrade to the richest template that can still be fully populated.
//
// Browser-imitating templates are also available:
//
//	ua := useragent.Generate(useragent.FormatFirefox)
package useragent
