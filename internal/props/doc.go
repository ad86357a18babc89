// Package props implements the layered tenant property store.
//
// A Store resolves dotted property keys (for example
// "tenants.profile.acme.jdbc-url") against an ordered list of sources:
//
//  1. the structured tenants file (YAML, flattened to dotted keys),
//  2. per-tenant property files in dotenv format, lazily loaded and
//     cached after the first successful read,
//  3. process environment variables, with dots and dashes replaced by
//     underscores and the key upper-cased.
//
// The first source yielding a non-blank, non-placeholder value wins. A
// synthetic "generated" layer sits below every real source; it holds
// properties derived for tenants from the default tenant template, so an
// explicitly configured value always beats a generated one.
//
// The reserved placeholder value "ChangeMe" means "not actually
// configured" and is treated as absent at every stage.
package props
