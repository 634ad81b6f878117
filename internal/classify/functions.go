package classify

import (
	"strings"

	"golang.org/x/text/cases"
)

// FunctionSet answers whether a name is a recognised global callable.
type FunctionSet interface {
	Contains(name string) bool
}

// Functions is an immutable set of PHP function names. PHP function names
// are case-insensitive, so lookups are done on case-folded names.
type Functions struct {
	names map[string]struct{}
}

// NewFunctions creates a set holding names.
func NewFunctions(names ...string) *Functions {
	f := &Functions{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		f.names[fold(name)] = struct{}{}
	}
	return f
}

// With returns a new set holding the members of f and names.
func (f *Functions) With(names ...string) *Functions {
	out := &Functions{names: make(map[string]struct{}, len(f.names)+len(names))}
	for name := range f.names {
		out.names[name] = struct{}{}
	}
	for _, name := range names {
		out.names[fold(name)] = struct{}{}
	}
	return out
}

// Contains reports whether name, optionally fully qualified with a leading
// backslash, is in the set.
func (f *Functions) Contains(name string) bool {
	_, ok := f.names[fold(name)]
	return ok
}

func (f *Functions) Len() int {
	return len(f.names)
}

func fold(name string) string {
	return cases.Fold().String(strings.TrimPrefix(name, `\`))
}

// BuiltinFunctions returns PHP's commonly available global functions.
func BuiltinFunctions() *Functions {
	return NewFunctions(builtinFunctionNames...)
}

// DefaultStrictFunctions are global functions that return a boolean without
// following the is_ naming convention.
var DefaultStrictFunctions = []string{
	"array_key_exists", "class_exists", "ctype_alnum", "ctype_alpha", "ctype_digit",
	"ctype_lower", "ctype_space", "ctype_upper", "ctype_xdigit", "defined",
	"enum_exists", "file_exists", "function_exists", "in_array", "interface_exists",
	"method_exists", "property_exists", "str_contains", "str_ends_with",
	"str_starts_with", "trait_exists",
}

var builtinFunctionNames = []string{
	// arrays
	"array_change_key_case", "array_chunk", "array_column", "array_combine",
	"array_count_values", "array_diff", "array_diff_assoc", "array_diff_key",
	"array_fill", "array_fill_keys", "array_filter", "array_flip", "array_intersect",
	"array_intersect_assoc", "array_intersect_key", "array_is_list", "array_key_exists",
	"array_key_first", "array_key_last", "array_keys", "array_map", "array_merge",
	"array_merge_recursive", "array_pad", "array_pop", "array_product", "array_push",
	"array_rand", "array_reduce", "array_replace", "array_reverse", "array_search",
	"array_shift", "array_slice", "array_splice", "array_sum", "array_unique",
	"array_unshift", "array_values", "array_walk", "arsort", "asort", "compact",
	"count", "current", "end", "explode", "extract", "implode", "in_array", "join",
	"key", "key_exists", "krsort", "ksort", "natcasesort", "natsort", "next", "prev",
	"range", "reset", "rsort", "shuffle", "sizeof", "sort", "uasort", "uksort", "usort",

	// strings
	"addslashes", "bin2hex", "chr", "chunk_split", "crc32", "hex2bin", "html_entity_decode",
	"htmlentities", "htmlspecialchars", "lcfirst", "levenshtein", "ltrim", "md5",
	"nl2br", "number_format", "ord", "parse_str", "preg_match", "preg_match_all",
	"preg_quote", "preg_replace", "preg_replace_callback", "preg_split", "rtrim",
	"sha1", "similar_text", "sprintf", "str_contains", "str_ends_with", "str_pad",
	"str_repeat", "str_replace", "str_split", "str_starts_with", "str_word_count",
	"strcasecmp", "strcmp", "strip_tags", "stripos", "stripslashes", "stristr",
	"strlen", "strncasecmp", "strncmp", "strpbrk", "strpos", "strrchr", "strrev",
	"strripos", "strrpos", "strstr", "strtolower", "strtoupper", "strtr", "substr",
	"substr_compare", "substr_count", "substr_replace", "trim", "ucfirst", "ucwords",
	"vsprintf", "wordwrap", "mb_strlen", "mb_strpos", "mb_strtolower", "mb_strtoupper",
	"mb_substr", "iconv", "iconv_strlen",

	// ctype
	"ctype_alnum", "ctype_alpha", "ctype_digit", "ctype_lower", "ctype_space",
	"ctype_upper", "ctype_xdigit",

	// types and variables
	"boolval", "floatval", "get_debug_type", "gettype", "intval", "is_a", "is_array",
	"is_bool", "is_callable", "is_countable", "is_double", "is_float", "is_int",
	"is_integer", "is_iterable", "is_long", "is_null", "is_numeric", "is_object",
	"is_resource", "is_scalar", "is_string", "is_subclass_of", "serialize", "settype",
	"strval", "unserialize", "var_export",

	// classes and functions
	"call_user_func", "call_user_func_array", "class_exists", "enum_exists",
	"func_get_args", "func_num_args", "function_exists", "get_called_class",
	"get_class", "get_class_methods", "get_object_vars", "get_parent_class",
	"interface_exists", "method_exists", "property_exists", "trait_exists",
	"spl_object_hash", "spl_object_id", "iterator_count", "iterator_to_array",

	// math
	"abs", "ceil", "floor", "fmod", "intdiv", "max", "min", "mt_rand", "pow",
	"random_int", "rand", "round", "sqrt", "is_finite", "is_infinite", "is_nan",

	// files and streams
	"basename", "dirname", "fclose", "feof", "fgets", "file", "file_exists",
	"file_get_contents", "file_put_contents", "filemtime", "filesize", "fopen",
	"fread", "fwrite", "glob", "is_dir", "is_executable", "is_file", "is_link",
	"is_readable", "is_uploaded_file", "is_writable", "is_writeable", "mkdir",
	"pathinfo", "realpath", "rename", "rmdir", "scandir", "tempnam", "touch", "unlink",

	// json, dates, misc
	"checkdate", "date", "defined", "constant", "filter_var", "function_exists",
	"getenv", "gmdate", "headers_sent", "http_build_query", "ini_get", "json_decode",
	"json_encode", "json_last_error", "microtime", "mktime", "parse_url",
	"session_id", "strtotime", "time", "uniqid", "urldecode", "urlencode",
	"version_compare",
}
