// internal/config/model.go
//
// Typed configuration model for the VP API.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                      – dotenv values,
//   • `conf/global.yaml`                   – primary static file,
//   • `VP_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client at boot, so secrets stay out of flat files and
// git history.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
}

//
// Database section
//

// Database holds the DSN template and its secret.
//
// The *template* (`DSN`) is kept in YAML so operators can tweak host, port,
// or flags without touching Vault; it must carry exactly one %s verb where
// the password goes, and should set clientFoundRows=true so upserts can
// distinguish "matched zero rows" from "changed zero columns."  The
// *secret* (`Password`) is normally a `vault:` reference resolved at boot.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password" validate:"required"`
}

//
// Auth section
//

// Auth configures the identity middleware.  Secret is the HMAC key shared
// with the front gateway that verifies users and re-signs claim tokens.
type Auth struct {
	Secret string `koanf:"secret" validate:"required"`
}

//
// Blob section
//

// Blob configures the upload store: a local directory and the public URL
// prefix the front proxy serves it under.
type Blob struct {
	Dir     string `koanf:"dir"      validate:"required"`
	BaseURL string `koanf:"base_url" validate:"required,url"`
}

//
// Geo section (optional)
//

// Geo points at a MaxMind database for access-log enrichment.  Empty path
// disables the lookup.
type Geo struct {
	Database string `koanf:"database"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or VP_ROOT override) so later code can build
// absolute file paths.
type Paths struct {
	Root string // VP_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Auth     Auth     `koanf:"auth"`
	Blob     Blob     `koanf:"blob"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
