package carrierserver

import (
	"regexp"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	seldomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/selection/domain"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	apierrors "github.com/Apurer/go-gin-carrier-checkout/internal/shared/errors"
)

const (
	carrierField = "mobapp_carrier"
	customField  = "mobapp_custom_carrier"
)

var indexedField = regexp.MustCompile(`^(mobapp_carrier|mobapp_custom_carrier)\[([0-9]+)\]$`)

// parseIDParam binds a positive int64 path parameter, answering 400 otherwise.
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return 0, false
	}
	if id <= 0 {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(name+" must be greater than zero"))
		return 0, false
	}
	return id, true
}

// bindQueryString binds an optional string query parameter.
func bindQueryString(c *gin.Context, name string) (string, bool) {
	var value string
	if err := runtime.BindQueryParameter("form", true, false, name, c.Request.URL.Query(), &value); err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return "", false
	}
	return value, true
}

// parseInstanceID reads a form instance id; anything but a positive integer is 0.
func parseInstanceID(raw string) (shipdomain.InstanceID, bool) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return shipdomain.InstanceID(n), true
}

// parseSubmission reads the indexed carrier fields of a checkout form.
// Keys present with empty values are kept so they can clear stored values.
func parseSubmission(c *gin.Context) (seldomain.FormSubmission, error) {
	sub := seldomain.FormSubmission{
		Carriers: map[shipdomain.InstanceID]string{},
		Customs:  map[shipdomain.InstanceID]string{},
	}
	if err := c.Request.ParseForm(); err != nil {
		return sub, err
	}
	for key, values := range c.Request.PostForm {
		m := indexedField.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		n, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		id := shipdomain.InstanceID(n)
		switch m[1] {
		case carrierField:
			sub.Carriers[id] = values[0]
		case customField:
			sub.Customs[id] = values[0]
		}
	}
	return sub, nil
}

func requireSession(c *gin.Context) (seldomain.SessionID, bool) {
	id := sessionFrom(c)
	if id == "" {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail("checkout session is missing"))
		return "", false
	}
	return id, true
}
