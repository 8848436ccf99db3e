package kernel

import (
	"fmt"
	"strings"

	"github.com/npillmayer/xterex/terex"
	"github.com/npillmayer/xterex/terex/terexlang"
)

// Versions reported by kernel_info.
const (
	ProtocolVersion = "5.3"
	Version         = "0.1.0"
	LanguageVersion = "0.1"
)

// LanguageInfo describes the language of the kernel.
type LanguageInfo struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Mimetype      string `json:"mimetype"`
	FileExtension string `json:"file_extension"`
}

// KernelInfoReply is the reply to a kernel_info request.
type KernelInfoReply struct {
	Status                string       `json:"status"`
	ProtocolVersion       string       `json:"protocol_version"`
	Implementation        string       `json:"implementation"`
	ImplementationVersion string       `json:"implementation_version"`
	LanguageInfo          LanguageInfo `json:"language_info"`
	Banner                string       `json:"banner"`
}

// KernelInfo describes the kernel and its language.
func KernelInfo() KernelInfoReply {
	return KernelInfoReply{
		Status:                StatusOK,
		ProtocolVersion:       ProtocolVersion,
		Implementation:        "xterex",
		ImplementationVersion: Version,
		LanguageInfo: LanguageInfo{
			Name:          "terex",
			Version:       LanguageVersion,
			Mimetype:      "text/x-terex",
			FileExtension: ".trx",
		},
		Banner: fmt.Sprintf("xterex %s -- a kernel for the TeREx language", Version),
	}
}

// IsCompleteReply is the reply to an is_complete request.
type IsCompleteReply struct {
	Status string `json:"status"`
	Indent string `json:"indent,omitempty"`
}

// IsComplete tells a host whether code can be executed as is or whether a
// frontend should prompt for more lines.
func IsComplete(code string) IsCompleteReply {
	c := terexlang.CheckComplete(code)
	reply := IsCompleteReply{Status: c.String()}
	if c == terexlang.Incomplete {
		reply.Indent = "  "
	}
	return reply
}

// InspectReply is the reply to an inspect request.
type InspectReply struct {
	Status string `json:"status"`
	Found  bool   `json:"found"`
	Name   string `json:"name,omitempty"`
	Text   string `json:"text,omitempty"`
}

// inspect describes the token under the cursor. Globals shadow keywords, as
// they do at run time.
func inspect(session *Session, code string, cursor int, detail int) InspectReply {
	runes := []rune(code)
	cursor = clampCursor(cursor, len(runes))
	name := string(runes[tokenStart(runes, cursor):tokenEnd(runes, cursor)])
	reply := InspectReply{Status: StatusOK, Name: name}
	if name == "" {
		return reply
	}
	if v, ok := session.Lookup(name); ok {
		reply.Found = true
		reply.Text = fmt.Sprintf("%s = %s", name, terex.Repr(v))
		if detail > 0 {
			reply.Text += fmt.Sprintf("\n%s is a global of type %s", name, terex.TypeName(v))
		}
		return reply
	}
	if kw, ok := terexlang.LookupKeyword(name); ok {
		reply.Found = true
		reply.Text = kw.Doc
		if detail > 0 {
			var kind string
			switch {
			case kw.Special:
				kind = "special form"
			case terex.IsBuiltin(kw.Name):
				kind = "builtin function"
			default:
				kind = "constant"
			}
			reply.Text = strings.Join([]string{kw.Doc, name + " is a " + kind}, "\n")
		}
	}
	return reply
}
