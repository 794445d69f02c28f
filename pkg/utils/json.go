package utils

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// PrettyJson formata relatórios e propostas para leitura no terminal. Bytes
// são tratados como JSON já serializado; o que não serializa cai no %+v.
func PrettyJson(in any) string {
	if raw, ok := in.([]byte); ok {
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return string(raw)
		}
		return out.String()
	}

	out, err := jsonAPI.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", in)
	}
	return string(out)
}
