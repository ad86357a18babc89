package props

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MapSource serves properties from an in-memory map. It backs the
// structured tenants file and is handy in tests.
type MapSource struct {
	name   string
	values map[string]string
}

// NewMapSource creates a named map-backed source.
func NewMapSource(name string, values map[string]string) *MapSource {
	return &MapSource{name: name, values: values}
}

func (m *MapSource) Lookup(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *MapSource) Name() string { return m.name }

// LoadYAMLSource reads a YAML file and flattens nested mappings into
// dotted keys. Both nested documents and flat dotted keys are accepted:
//
//	tenant:
//	  ids: "acme,beta"
//	tenants.profile.default.jdbc-url: jdbc:postgresql://db:5432/acme
//
// A missing file is not an error; it yields an empty source so the
// remaining layers still apply.
func LoadYAMLSource(path string) (*MapSource, error) {
	name := "yaml:" + filepath.Base(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewMapSource(name, map[string]string{}), nil
		}
		return nil, fmt.Errorf("read tenants file %s: %w", path, err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tenants file %s: %w", path, err)
	}

	values := make(map[string]string)
	flatten("", doc, values)
	return NewMapSource(name, values), nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch vv := v.(type) {
		case map[string]any:
			flatten(key, vv, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprintf("%v", vv)
		}
	}
}

// FileSource serves per-tenant property files named {tenantID}.properties
// in dotenv format under a well-known directory. Files hold bare
// suffixes ("jdbc-url=...") and are cached after the first successful
// load. Only keys in the canonical per-tenant namespace are served.
type FileSource struct {
	dir string

	mu    sync.Mutex
	files map[string]map[string]string
}

// NewFileSource creates a file-backed source rooted at dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:   dir,
		files: make(map[string]map[string]string),
	}
}

func (f *FileSource) Lookup(key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, ProfilePrefix)
	if !ok {
		return "", false
	}
	tenantID, suffix, ok := strings.Cut(rest, ".")
	if !ok || tenantID == "" || suffix == "" {
		return "", false
	}

	values, err := f.load(tenantID)
	if err != nil {
		return "", false
	}
	v, ok := values[suffix]
	return v, ok
}

func (f *FileSource) Name() string { return "file:" + f.dir }

func (f *FileSource) load(tenantID string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if values, ok := f.files[tenantID]; ok {
		return values, nil
	}

	values, err := godotenv.Read(filepath.Join(f.dir, tenantID+".properties"))
	if err != nil {
		// Not cached: the file may appear later (e.g. a tenant added at
		// runtime with its property file deployed afterwards).
		return nil, err
	}

	f.files[tenantID] = values
	return values, nil
}

// EnvSource serves properties from process environment variables. The
// variable name is the key with dots and dashes replaced by underscores,
// upper-cased: "tenants.profile.acme.jdbc-url" -> "TENANTS_PROFILE_ACME_JDBC_URL".
type EnvSource struct{}

// NewEnvSource creates an environment-backed source.
func NewEnvSource() *EnvSource { return &EnvSource{} }

func (e *EnvSource) Lookup(key string) (string, bool) {
	return os.LookupEnv(EnvKey(key))
}

func (e *EnvSource) Name() string { return "env" }

// EnvKey converts a dotted property key to its environment-variable form.
func EnvKey(key string) string {
	r := strings.NewReplacer(".", "_", "-", "_")
	return strings.ToUpper(r.Replace(key))
}
