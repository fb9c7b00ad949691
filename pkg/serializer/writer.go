package serializer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	cnserrors "github.com/visa-provisioning/udjson/pkg/errors"
)

// Format represents the output format type
type Format string

const (
	// FormatRaw writes strings as-is, one per line
	FormatRaw Format = "raw"
	// FormatJSON outputs data in JSON format
	FormatJSON Format = "json"
	// FormatYAML outputs data in YAML format
	FormatYAML Format = "yaml"
	// FormatTable outputs data in table format
	FormatTable Format = "table"
)

const defaultValueKey = "value"

func (f Format) IsUnknown() bool {
	switch f {
	case FormatRaw, FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// Extension returns the file extension used when the format is stored
// under a ConfigMap data key.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTable, FormatRaw:
		return "txt"
	default:
		return "json"
	}
}

// SupportedFormats returns a list of all supported output formats
// for serialization.
func SupportedFormats() []string {
	return []string{
		string(FormatRaw),
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTable),
	}
}

// Writer handles serialization of data to various formats.
// Close must be called to release file handles when using NewFileWriter.
type Writer struct {
	format Format
	output io.Writer
	closer io.Closer
}

// NewWriter creates a new Writer with the specified format and output destination.
// If output is nil, os.Stdout will be used.
// If format is unknown, defaults to JSON format.
func NewWriter(format Format, output io.Writer) *Writer {
	if output == nil {
		output = os.Stdout
	}
	return &Writer{
		format: normalize(format),
		output: output,
	}
}

// NewFileWriter creates a Writer for the given destination. An empty path
// writes to stdout, a cm://namespace/name URI writes to a Kubernetes
// ConfigMap and anything else is created as a file. Call Close on the
// result to release the file.
func NewFileWriter(format Format, path string) (Serializer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return NewStdoutWriter(format), nil
	}

	if strings.HasPrefix(trimmed, ConfigMapURIScheme) {
		namespace, name, err := parseConfigMapURI(trimmed)
		if err != nil {
			return nil, cnserrors.WrapWithContext(cnserrors.ErrCodeInvalidRequest,
				"invalid output ConfigMap URI", err, map[string]any{"uri": trimmed})
		}
		return NewConfigMapWriter(namespace, name, format), nil
	}

	file, err := os.Create(trimmed)
	if err != nil {
		code := cnserrors.ErrCodeInternal
		switch {
		case errors.Is(err, fs.ErrNotExist):
			code = cnserrors.ErrCodeNotFound
		case errors.Is(err, fs.ErrPermission):
			code = cnserrors.ErrCodePermissionDenied
		}
		return nil, cnserrors.WrapWithContext(code, "failed to create output file", err,
			map[string]any{"path": trimmed})
	}

	return &Writer{
		format: normalize(format),
		output: file,
		closer: file,
	}, nil
}

// NewStdoutWriter creates a new Writer that outputs to stdout in the specified format.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

func normalize(format Format) Format {
	if format.IsUnknown() {
		slog.Warn("unknown format, defaulting to JSON", "format", format)
		return FormatJSON
	}
	return format
}

// Close releases any resources associated with the Writer.
// It's safe to call Close multiple times or on stdout-based writers.
func (w *Writer) Close() error {
	if w.closer != nil {
		err := w.closer.Close()
		w.closer = nil
		return err
	}
	return nil
}

// Serialize writes data in the configured format.
// Context is accepted for the Serializer interface; file and stdout
// writes do not observe it.
func (w *Writer) Serialize(ctx context.Context, data any) error {
	content, err := marshal(w.format, data)
	if err != nil {
		return err
	}
	if _, err := w.output.Write(content); err != nil {
		return fmt.Errorf("failed to write %s output: %w", w.format, err)
	}
	return nil
}

// marshal renders data in the given format. Shared by Writer and ConfigMapWriter.
func marshal(format Format, data any) ([]byte, error) {
	switch format {
	case FormatRaw:
		return serializeRaw(data)
	case FormatJSON:
		return serializeJSON(data)
	case FormatYAML:
		return serializeYAML(data)
	case FormatTable:
		return serializeTable(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// serializeRaw writes strings verbatim, one per line. Anything else is
// rendered with fmt's default verb.
func serializeRaw(data any) ([]byte, error) {
	var b strings.Builder
	switch v := data.(type) {
	case nil:
		return nil, nil
	case string:
		b.WriteString(v)
		b.WriteByte('\n')
	case []string:
		for _, s := range v {
			b.WriteString(s)
			b.WriteByte('\n')
		}
	case []byte:
		b.Write(v)
		b.WriteByte('\n')
	case fmt.Stringer:
		b.WriteString(v.String())
		b.WriteByte('\n')
	default:
		fmt.Fprintf(&b, "%v\n", v)
	}
	return []byte(b.String()), nil
}

// serializeJSON does not escape HTML characters: escaped user-data is
// emitted as a field value and must survive unchanged.
func serializeJSON(data any) ([]byte, error) {
	var b strings.Builder
	encoder := json.NewEncoder(&b)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(data); err != nil {
		return nil, fmt.Errorf("failed to serialize to JSON: %w", err)
	}
	return []byte(b.String()), nil
}

func serializeYAML(data any) ([]byte, error) {
	var b strings.Builder
	encoder := yaml.NewEncoder(&b)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to serialize to YAML: %w", err)
	}
	return []byte(b.String()), nil
}

func serializeTable(data any) ([]byte, error) {
	flat := make(map[string]any)
	flattenValue(flat, reflect.ValueOf(data), "")
	if len(flat) == 0 {
		return []byte("<empty>\n"), nil
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	tw := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	fmt.Fprintln(tw, "-----\t-----")
	for _, key := range keys {
		fmt.Fprintf(tw, "%s\t%v\n", key, flat[key])
	}
	if err := tw.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush table: %w", err)
	}
	return []byte(builder.String()), nil
}

func flattenValue(out map[string]any, val reflect.Value, prefix string) {
	if !val.IsValid() {
		return
	}

	for val.Kind() == reflect.Pointer || val.Kind() == reflect.Interface {
		if val.IsNil() {
			if prefix != "" {
				out[prefix] = nil
			}
			return
		}
		val = val.Elem()
	}

	//nolint:exhaustive // We handle the common cases explicitly; all others go to default
	switch val.Kind() {
	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			field := typ.Field(i)
			if !field.IsExported() {
				continue
			}
			flattenValue(out, val.Field(i), joinKey(prefix, field.Name))
		}
	case reflect.Map:
		for _, mapKey := range val.MapKeys() {
			key := joinKey(prefix, fmt.Sprintf("%v", mapKey.Interface()))
			flattenValue(out, val.MapIndex(mapKey), key)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < val.Len(); i++ {
			flattenValue(out, val.Index(i), joinKey(prefix, fmt.Sprintf("[%d]", i)))
		}
	default:
		if prefix == "" {
			prefix = defaultValueKey
		}
		out[prefix] = val.Interface()
	}
}

func joinKey(prefix, suffix string) string {
	if prefix == "" {
		return suffix
	}
	if suffix == "" {
		return prefix
	}
	return prefix + "." + suffix
}
