package utils

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/iancoleman/orderedmap"
	"github.com/jedib0t/go-pretty/v6/table"
)

/**
 * Convert a struct to an ordered map keyed by json tag
 * @param {interface{}} v - Struct value (or pointer to struct)
 * @returns {*orderedmap.OrderedMap, error} Map preserving field declaration order
 */
func StructToOrderedMap(v interface{}) (*orderedmap.OrderedMap, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected struct, got %s", rv.Kind())
	}

	om := orderedmap.New()
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if field.PkgPath != "" {
			continue // 跳过非导出字段
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName := strings.Split(tag, ",")[0]
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		om.Set(name, rv.Field(i).Interface())
	}
	return om, nil
}

/**
 * Print a list of ordered maps as an aligned table
 * @param {[]*orderedmap.OrderedMap} rows - Rows sharing one key set
 * @description
 * - Header is taken from the key order of the first row
 */
func PrintFormat(rows []*orderedmap.OrderedMap) {
	if len(rows) == 0 {
		return
	}

	keys := rows[0].Keys()
	header := table.Row{}
	for _, key := range keys {
		header = append(header, strings.ToUpper(key))
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	for _, row := range rows {
		cells := table.Row{}
		for _, key := range keys {
			value, _ := row.Get(key)
			cells = append(cells, value)
		}
		t.AppendRow(cells)
	}
	t.Render()
}
