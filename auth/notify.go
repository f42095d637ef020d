package auth

import (
	"net/http"
	"strings"

	"github.com/arvoredigital/portaria/actions"
	"github.com/arvoredigital/portaria/http/resp"
	"github.com/arvoredigital/portaria/http/session"
)

// A notification describes what a successful Result turns into:
// where the browser goes next and, optionally, the one flash it sees there.
type notification struct {
	redirect string
	flash    *session.Flash
}

// notify is the single adapter between a flow Result and the client.
//
// Clients accepting JSON get the Result echoed with a matching status
// code. Browser clients get exactly one flash - the success flash from
// the notification, or an error flash carrying the Result's message -
// and a redirect: onward for success, back to failPath otherwise.
func (h *Handler) notify(w http.ResponseWriter, r *http.Request, res actions.Result, n notification, failPath string) {
	if acceptsJson(r.Header) {
		code := http.StatusOK
		switch {
		case res.Success:
		case res.Error == actions.MsgTooManyAttempts:
			code = http.StatusTooManyRequests
		default:
			code = http.StatusUnprocessableEntity
		}

		if err := h.d.Json(w, r, resp.Code(code), resp.Data(res)); err != nil {
			h.d.Err(w, r, err)
		}

		return
	}

	if res.Success {
		opts := []resp.Fn{resp.Url(n.redirect)}
		if n.flash != nil {
			opts = append(opts, resp.Flash(*n.flash))
		}

		if err := h.d.Redirect(w, r, opts...); err != nil {
			h.d.Err(w, r, err)
		}

		return
	}

	err := h.d.Redirect(w, r,
		resp.Url(failPath),
		resp.Flash(session.Flash{Class: session.FlashError, Msg: res.Error}),
	)
	if err != nil {
		h.d.Err(w, r, err)
	}
}

// acceptsJson asserts whether the request accepts JSON or not.
func acceptsJson(header http.Header) bool {
	for _, v := range header.Values("Accept") {
		if strings.Contains(v, "application/json") {
			return true
		}
	}

	return false
}
