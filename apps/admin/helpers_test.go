package main

import (
	"strconv"

	"github.com/trezcool/madrasa/core"
)

var nationalityQuery = core.PageQuery{}

func itoa(i int) string { return strconv.Itoa(i) }

func mustDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
