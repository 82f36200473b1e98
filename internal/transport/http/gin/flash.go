package httpgin

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/eventease/internal/service/reconcile"
)

const flashCookie = "ee_flash"

// setFlash stores a one-time notice for the next render.
func setFlash(c *gin.Context, n reconcile.Notice, secure bool) {
	if n == reconcile.NoticeNone {
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(n)),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash reads and clears the notice.
func popFlash(c *gin.Context, secure bool) reconcile.Notice {
	cookie, err := c.Request.Cookie(flashCookie)
	if err != nil {
		return reconcile.NoticeNone
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return reconcile.NoticeNone
	}

	n := reconcile.Notice(raw)
	if n.Message() == "" {
		return reconcile.NoticeNone
	}

	return n
}
