package admin

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/crustntrust/site-api/internal/apperr"
	"github.com/crustntrust/site-api/internal/interfaces/http/common"
)

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body := io.LimitReader(r.Body, common.MaxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, "decode body", err)
	}
	return nil
}
