package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"partnerhub/internal/models"
	"partnerhub/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

const maxBodyBytes = 1 << 20

type groupPartner struct {
	container *do.Injector
}

// route pairs a partner endpoint with the ability its token must carry.
type route struct {
	Method  string
	Path    string
	Ability string
	Handler echo.HandlerFunc
}

func (gr *groupPartner) routes() []route {
	return []route{
		{http.MethodGet, "/partners", models.AbilityViewPartners, gr.Index},
		{http.MethodPost, "/partners", models.AbilityEditPartners, gr.Store},
		{http.MethodGet, "/partners/:partner", models.AbilityViewPartners, gr.Show},
		{http.MethodPut, "/partners/:partner", models.AbilityEditPartners, gr.Update},
		{http.MethodPatch, "/partners/:partner", models.AbilityEditPartners, gr.Update},
		{http.MethodDelete, "/partners/:partner", models.AbilityEditPartners, gr.Destroy},
	}
}

// decodePayload reads the request body as a field map. JSON objects and
// form bodies are accepted; an empty body is an empty object.
func decodePayload(c echo.Context) (map[string]json.RawMessage, error) {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(ctype, echo.MIMEApplicationForm) || strings.HasPrefix(ctype, echo.MIMEMultipartForm) {
		return decodeForm(c)
	}

	payload := map[string]json.RawMessage{}
	if c.Request().Body == nil {
		return payload, nil
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Invalid)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return payload, nil
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, errorx.Wrap(services.ErrMalformedPayload, errorx.Invalid)
	}
	if payload == nil {
		payload = map[string]json.RawMessage{}
	}
	return payload, nil
}

// decodeForm maps form fields onto JSON values. Repeated keys and keys
// ending in "[]" become arrays.
func decodeForm(c echo.Context) (map[string]json.RawMessage, error) {
	form, err := c.FormParams()
	if err != nil {
		return nil, errorx.Wrap(services.ErrMalformedPayload, errorx.Invalid)
	}

	payload := make(map[string]json.RawMessage, len(form))
	for key, values := range form {
		var v any = values
		name, isList := strings.CutSuffix(key, "[]")
		if !isList && len(values) == 1 {
			v = values[0]
		}

		raw, err := json.Marshal(v)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Invalid)
		}
		payload[name] = raw
	}
	return payload, nil
}

func (gr *groupPartner) service() (*services.ServicePartner, error) {
	return do.Invoke[*services.ServicePartner](gr.container)
}

// findPartner loads the partner addressed by the :partner path param.
func (gr *groupPartner) findPartner(c echo.Context, service *services.ServicePartner) (*models.Partner, error) {
	id, err := strconv.ParseInt(c.Param("partner"), 10, 64)
	if err != nil || id < 1 {
		return nil, errorx.Wrap(services.ErrPartnerNotFound, errorx.NotExist)
	}

	return service.GetPartner(c.Request().Context(), id)
}

func (gr *groupPartner) Index(c echo.Context) error {
	service, err := gr.service()
	if err != nil {
		return err
	}

	page := httpx.QueryParamInt(c, "page", 1)
	perPage := httpx.QueryParamInt(c, "per_page", services.PARTNER_DEFAULT_PER_PAGE)

	result, err := service.ListPartners(c.Request().Context(), page, perPage)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newPartnerCollection(c, result))
}

func (gr *groupPartner) Store(c echo.Context) error {
	service, err := gr.service()
	if err != nil {
		return err
	}

	payload, err := decodePayload(c)
	if err != nil {
		return err
	}

	in, err := services.ValidatePartner(payload)
	if err != nil {
		return err
	}

	partner, err := service.CreatePartner(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, newPartnerResource(partner))
}

func (gr *groupPartner) Show(c echo.Context) error {
	service, err := gr.service()
	if err != nil {
		return err
	}

	partner, err := gr.findPartner(c, service)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newPartnerResource(partner))
}

func (gr *groupPartner) Update(c echo.Context) error {
	service, err := gr.service()
	if err != nil {
		return err
	}

	partner, err := gr.findPartner(c, service)
	if err != nil {
		return err
	}

	payload, err := decodePayload(c)
	if err != nil {
		return err
	}

	in, err := services.ValidatePartner(payload)
	if err != nil {
		return err
	}

	partner, err = service.UpdatePartner(c.Request().Context(), partner, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newPartnerResource(partner))
}

func (gr *groupPartner) Destroy(c echo.Context) error {
	service, err := gr.service()
	if err != nil {
		return err
	}

	partner, err := gr.findPartner(c, service)
	if err != nil {
		return err
	}

	if err := service.DeletePartner(c.Request().Context(), partner.ID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
