package handler

import (
	"fmt"
	"net/url"
	"strconv"

	"partnerhub/internal/models"

	"github.com/labstack/echo/v4"
)

type partnerResource struct {
	Data models.Partner `json:"data"`
}

type paginationLinks struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

type paginationMeta struct {
	CurrentPage int    `json:"current_page"`
	From        *int   `json:"from"`
	LastPage    int    `json:"last_page"`
	Path        string `json:"path"`
	PerPage     int    `json:"per_page"`
	To          *int   `json:"to"`
	Total       int    `json:"total"`
}

type partnerCollection struct {
	Data  []models.Partner `json:"data"`
	Links paginationLinks  `json:"links"`
	Meta  paginationMeta   `json:"meta"`
}

func toPartner(p models.Partner) models.Partner {
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p
}

func toUser(u models.User) models.User {
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u
}

func newPartnerResource(p *models.Partner) partnerResource {
	return partnerResource{Data: toPartner(*p)}
}

func newPartnerCollection(c echo.Context, page *models.PartnerPage) partnerCollection {
	req := c.Request()
	path := fmt.Sprintf("%s://%s%s", c.Scheme(), req.Host, req.URL.Path)
	keepPerPage := c.QueryParam("per_page") != ""

	pageURL := func(n int) string {
		q := url.Values{}
		q.Set("page", strconv.Itoa(n))
		if keepPerPage {
			q.Set("per_page", strconv.Itoa(page.PerPage))
		}
		return path + "?" + q.Encode()
	}

	data := make([]models.Partner, 0, len(page.Partners))
	for _, p := range page.Partners {
		data = append(data, toPartner(p))
	}

	lastPage := page.LastPage()
	links := paginationLinks{
		First: pageURL(1),
		Last:  pageURL(lastPage),
	}
	if page.Page > 1 {
		prev := pageURL(page.Page - 1)
		links.Prev = &prev
	}
	if page.Page < lastPage {
		next := pageURL(page.Page + 1)
		links.Next = &next
	}

	meta := paginationMeta{
		CurrentPage: page.Page,
		LastPage:    lastPage,
		Path:        path,
		PerPage:     page.PerPage,
		Total:       page.Total,
	}
	if len(data) > 0 {
		from := (page.Page-1)*page.PerPage + 1
		to := from + len(data) - 1
		meta.From = &from
		meta.To = &to
	}

	return partnerCollection{Data: data, Links: links, Meta: meta}
}
