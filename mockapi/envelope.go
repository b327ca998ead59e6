// Copyright (c) 2024-2025 Darcy Buskermolen <darcy@dbitech.ca>
// SPDX-License-Identifier: BSD-3-Clause

package mockapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// Page is the list envelope used by most endpoints.
type Page[T any] struct {
	Data     []T `json:"data"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Items is the list envelope of the configuration endpoints.
type Items[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data"`
}

func pageParams(q url.Values) (page, size int) {
	page, size = defaultPage, defaultPageSize
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("pageSize")); err == nil && v > 0 {
		size = v
	}
	return page, size
}

// Paginate slices items by the page and pageSize query parameters.
func Paginate[T any](items []T, q url.Values) Page[T] {
	page, size := pageParams(q)
	// compare before multiplying; huge page or pageSize values must not overflow
	start := len(items)
	if page-1 < len(items)/size+1 {
		start = min((page-1)*size, len(items))
	}
	end := len(items)
	if size < end-start {
		end = start + size
	}
	data := make([]T, end-start)
	copy(data, items[start:end])
	return Page[T]{Data: data, Total: len(items), Page: page, PageSize: size}
}

func listOf[T any](items []T, q url.Values) *Response {
	return &Response{Status: http.StatusOK, Body: Paginate(items, q)}
}

func itemsOf[T any](items []T) *Response {
	out := make([]T, len(items))
	copy(out, items)
	return &Response{Status: http.StatusOK, Body: Items[T]{Items: out, Total: len(out)}}
}

func detail(v any) *Response {
	return &Response{Status: http.StatusOK, Body: result{Success: true, Data: v}}
}

func plain(v any) *Response {
	return &Response{Status: http.StatusOK, Body: v}
}

// echo answers a mutation by returning its body. Fixtures are left unchanged.
func echo(req *Request, message string) *Response {
	var data any = struct{}{}
	if len(req.Body) > 0 && json.Valid(req.Body) {
		data = req.Body
	}
	return &Response{Status: http.StatusOK, Body: result{Success: true, Message: message, Data: data}}
}

// findByID returns the first item whose id matches, or the first item when
// none does. ok is false only for an empty fixture.
func findByID[T any](items []T, id string, idOf func(T) string) (item T, ok bool) {
	if len(items) == 0 {
		return item, false
	}
	for _, it := range items {
		if idOf(it) == id {
			return it, true
		}
	}
	return items[0], true
}

// filter keeps items matching keep, preserving order.
func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func isRead(method string) bool {
	return method == "" || method == http.MethodGet || method == http.MethodHead
}
