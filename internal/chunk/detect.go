package chunk

import "strings"

// extensionLanguage maps a file extension to the language tag used to
// select a chunker grammar (internal/chunk/languages.go).
var extensionLanguage = map[string]string{
	".go":    "go",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".ts":    "typescript",
	".tsx":   "tsx",
	".rs":    "rust",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".hh":    "cpp",
}

// DetectLanguage returns the chunker language tag for a file path's
// extension, or "" when no grammar applies (the text chunker is used).
func DetectLanguage(path string) string {
	ext := strings.ToLower(extOf(path))
	return extensionLanguage[ext]
}

func extOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}
