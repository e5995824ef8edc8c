package plugin

import (
	"encoding/json"
	"fmt"
	"io"
)

// HandlerFunc implements a plugin action. Returned data is passed back in
// Response.Data.
type HandlerFunc func(req *Request) (json.RawMessage, error)

// Serve is the plugin side of the protocol: it decodes one Request from r,
// runs h and encodes the Response to w. Handler errors become unsuccessful
// responses, so only I/O failures are returned.
func Serve(r io.Reader, w io.Writer, h HandlerFunc) error {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return writeResponse(w, Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
	}

	data, err := h(&req)
	if err != nil {
		return writeResponse(w, Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
	}
	return writeResponse(w, Response{Success: true, Data: data})
}

func writeResponse(w io.Writer, resp Response) error {
	return json.NewEncoder(w).Encode(resp)
}
