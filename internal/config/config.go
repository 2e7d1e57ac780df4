package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/canvas-tools/internal/locate"
)

// FileName is the configuration file looked for in every search directory.
const FileName = ".canvas-config.json"

// Document keys.
const (
	KeyCanvasBaseURL        = "canvas_base_url"
	KeyCookiesFile          = "cookies_file"
	KeyCookiesFileResolved  = "cookies_file_resolved"
	KeyCourses              = "courses"
	KeySummarizationBackend = "summarization_backend"
	KeyGeminiModel          = "gemini_model"
	KeyReasoningBackend     = "reasoning_backend"
	KeyCodexModel           = "codex_model"
)

// defaults holds the fallback for every optional selector.
var defaults = map[string]string{
	KeySummarizationBackend: "claude",
	KeyGeminiModel:          "gemini-3-flash-preview",
	KeyReasoningBackend:     "claude",
	KeyCodexModel:           "gpt-5.2-codex-xhigh",
}

// Default returns the fallback value of an optional key.
func Default(key string) string {
	return defaults[key]
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	// ConfigFile pins the configuration path and disables the search.
	ConfigFile string
}

// Course is one entry of the courses sequence. The raw JSON is kept so the
// record can be written back verbatim.
type Course struct {
	Folder *string `json:"folder" validate:"required"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the folder field and keeps the full record.
func (c *Course) UnmarshalJSON(data []byte) error {
	var fields struct {
		Folder *string `json:"folder"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	c.Folder = fields.Folder
	c.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON writes the record as it appeared in the document.
func (c Course) MarshalJSON() ([]byte, error) {
	if c.raw == nil {
		return json.Marshal(struct {
			Folder *string `json:"folder"`
		}{c.Folder})
	}
	return c.raw, nil
}

// FolderName returns the course folder, or "" when unset.
func (c Course) FolderName() string {
	if c.Folder == nil {
		return ""
	}
	return *c.Folder
}

// value is one top-level entry of the document. JSON null decodes to nil so
// a null key counts as absent.
type value json.RawMessage

// UnmarshalJSON keeps the raw entry unless it is null.
func (v *value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	*v = append((*v)[:0], data...)
	return nil
}

// text returns a JSON string as its content and any other value as its
// compact JSON text.
func (v value) text() string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return string(v)
	}
	return buf.String()
}

// document mirrors the configuration file. Values stay raw until every
// required key is known to be present.
type document struct {
	CanvasBaseURL        value `json:"canvas_base_url" validate:"required"`
	CookiesFile          value `json:"cookies_file" validate:"required"`
	Courses              value `json:"courses" validate:"required"`
	SummarizationBackend value `json:"summarization_backend"`
	GeminiModel          value `json:"gemini_model"`
	ReasoningBackend     value `json:"reasoning_backend"`
	CodexModel           value `json:"codex_model"`
}

// courseList validates each course record.
type courseList struct {
	Courses []Course `json:"courses" validate:"dive"`
}

// Config is the loaded, validated configuration. It is read-only after Load.
type Config struct {
	path                string
	canvasBaseURL       string
	cookiesFile         string
	cookiesFileResolved string
	courses             []Course
	optional            map[string]string
	keys                []string
	raw                 map[string]json.RawMessage
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Locate returns the configuration path: the pinned override when given,
// otherwise the first existing candidate of search.
func Locate(search locate.Search, overrides *CLIOverrides) (string, error) {
	if overrides != nil && overrides.ConfigFile != "" {
		search = locate.New(locate.Path(locate.ExpandHome(overrides.ConfigFile)))
	}

	path, ok := search.First()
	if !ok {
		return "", fmt.Errorf("%w (searched: %s)", ErrNotFound, strings.Join(search.Paths(), ", "))
	}
	return path, nil
}

// Load locates the configuration file and loads it.
func Load(search locate.Search, overrides *CLIOverrides) (*Config, error) {
	path, err := Locate(search, overrides)
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile parses and validates the configuration at path and resolves the
// cookie store path against the file's directory. Missing required keys are
// reported before any value of the wrong type.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	keys, raw, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	missing, err := missingFields(doc)
	if err != nil {
		return nil, err
	}

	var courses courseList
	var typeErr error
	if doc.Courses != nil {
		if err := json.Unmarshal(doc.Courses, &courses.Courses); err != nil {
			typeErr = fmt.Errorf("%w: %s: %v", ErrInvalidValue, KeyCourses, err)
		} else {
			courseMissing, err := missingFields(courses)
			if err != nil {
				return nil, err
			}
			missing = append(missing, courseMissing...)
		}
	}

	if len(missing) > 0 {
		return nil, &MissingFieldsError{Fields: missing}
	}
	if typeErr != nil {
		return nil, typeErr
	}

	var cookiesFile string
	if err := json.Unmarshal(doc.CookiesFile, &cookiesFile); err != nil {
		return nil, fmt.Errorf("%w: %s must be a string", ErrInvalidValue, KeyCookiesFile)
	}

	optional := make(map[string]string, len(defaults))
	for key, v := range map[string]value{
		KeySummarizationBackend: doc.SummarizationBackend,
		KeyGeminiModel:          doc.GeminiModel,
		KeyReasoningBackend:     doc.ReasoningBackend,
		KeyCodexModel:           doc.CodexModel,
	} {
		if v != nil {
			optional[key] = v.text()
		}
	}

	return &Config{
		path:                path,
		canvasBaseURL:       doc.CanvasBaseURL.text(),
		cookiesFile:         cookiesFile,
		cookiesFileResolved: resolvePath(path, cookiesFile),
		courses:             courses.Courses,
		optional:            optional,
		keys:                keys,
		raw:                 raw,
	}, nil
}

// decodeObject reads a top-level JSON object and returns its keys in file
// order. A repeated key keeps its first position and its last value.
func decodeObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("top-level value must be an object")
	}

	var keys []string
	raw := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}

		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, nil, err
		}
		if _, seen := raw[key]; !seen {
			keys = append(keys, key)
		}
		raw[key] = v
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("unexpected data after top-level object")
	}
	return keys, raw, nil
}

// missingFields lists every required field absent from s.
func missingFields(s any) ([]string, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fieldPath(fe.Namespace()))
	}
	return fields, nil
}

// fieldPath drops the struct type name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// resolvePath joins a relative path to the directory of configPath and
// follows symlinks in the longest existing prefix.
func resolvePath(configPath, declared string) string {
	resolved := declared
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(configPath), resolved)
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}
	return evalExisting(filepath.Clean(resolved))
}

// evalExisting resolves symlinks in path, or in its nearest existing
// ancestor when path itself does not exist.
func evalExisting(path string) string {
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	dir, base := filepath.Split(path)
	dir = filepath.Clean(dir)
	if dir == path {
		return path
	}
	return filepath.Join(evalExisting(dir), base)
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// CanvasBaseURL returns the service base URL.
func (c *Config) CanvasBaseURL() string { return c.canvasBaseURL }

// CookiesFile returns the cookie store path as declared in the file.
func (c *Config) CookiesFile() string { return c.cookiesFile }

// CookiesFileResolved returns the absolute cookie store path.
func (c *Config) CookiesFileResolved() string { return c.cookiesFileResolved }

// Courses returns the course records in document order.
func (c *Config) Courses() []Course {
	return append([]Course(nil), c.courses...)
}

// CoursesJSON serializes the course sequence as it appeared in the file.
func (c *Config) CoursesJSON() ([]byte, error) {
	courses := c.courses
	if courses == nil {
		courses = []Course{}
	}
	return json.Marshal(courses)
}

// CourseFolders joins the course folder names with single spaces.
func (c *Config) CourseFolders() string {
	folders := make([]string, 0, len(c.courses))
	for _, course := range c.courses {
		folders = append(folders, course.FolderName())
	}
	return strings.Join(folders, " ")
}

// SummarizationBackend returns the summarization backend, "claude" by default.
func (c *Config) SummarizationBackend() string { return c.value(KeySummarizationBackend) }

// GeminiModel returns the Gemini model name.
func (c *Config) GeminiModel() string { return c.value(KeyGeminiModel) }

// ReasoningBackend returns the reasoning backend, "claude" by default.
func (c *Config) ReasoningBackend() string { return c.value(KeyReasoningBackend) }

// CodexModel returns the Codex model name.
func (c *Config) CodexModel() string { return c.value(KeyCodexModel) }

// value returns an optional key or its default. Values are not checked
// against any known set of backends.
func (c *Config) value(key string) string {
	if v, ok := c.optional[key]; ok {
		return v
	}
	return defaults[key]
}

// JSON renders the loaded document plus the resolved cookie path as
// indented JSON, keeping the file's key order.
func (c *Config) JSON() ([]byte, error) {
	resolved, err := json.Marshal(c.cookiesFileResolved)
	if err != nil {
		return nil, fmt.Errorf("encode resolved path: %w", err)
	}

	keys := c.keys
	if _, ok := c.raw[KeyCookiesFileResolved]; !ok {
		keys = append(slices.Clip(keys), KeyCookiesFileResolved)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, fmt.Errorf("encode key %q: %w", key, err)
		}
		buf.Write(name)
		buf.WriteByte(':')
		if key == KeyCookiesFileResolved {
			buf.Write(resolved)
		} else {
			buf.Write(c.raw[key])
		}
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return out.Bytes(), nil
}

// YAML renders the same document as JSON in block-style YAML.
func (c *Config) YAML() ([]byte, error) {
	data, err := c.JSON()
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow and quoting styles the JSON source left on n.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
