package sqlite

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"
)

var (
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeType    = reflect.TypeOf(time.Time{})
)

// sqlite hands back DATETIME values as strings when the column type is lost,
// as it is for RETURNING results.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Scanner maps result columns onto struct fields by db tag or by name,
// ignoring case.
type Scanner struct{}

func NewScanner() *Scanner {
	return &Scanner{}
}

// ScanRowToStruct advances rows once and scans that row into dest.
func (s *Scanner) ScanRowToStruct(rows *sql.Rows, dest interface{}) error {
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}

		return sql.ErrNoRows
	}

	return s.scanCurrent(rows, dest)
}

func (s *Scanner) ScanRowsToSlice(rows *sql.Rows, dest interface{}) error {
	destValue := reflect.ValueOf(dest)

	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("dest must be a pointer to slice")
	}

	sliceValue := destValue.Elem()
	sliceElemType := sliceValue.Type().Elem()
	elemType := sliceElemType

	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}

	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("slice elements must be structs or pointers to structs")
	}

	for rows.Next() {
		elemValue := reflect.New(elemType)

		if err := s.scanCurrent(rows, elemValue.Interface()); err != nil {
			return err
		}

		if sliceElemType.Kind() == reflect.Ptr {
			sliceValue.Set(reflect.Append(sliceValue, elemValue))
		} else {
			sliceValue.Set(reflect.Append(sliceValue, elemValue.Elem()))
		}
	}

	return rows.Err()
}

func (s *Scanner) scanCurrent(rows *sql.Rows, dest interface{}) error {
	destValue := reflect.ValueOf(dest)

	if destValue.Kind() != reflect.Ptr || destValue.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("dest must be a pointer to struct")
	}

	destElem := destValue.Elem()
	destType := destElem.Type()

	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	scanArgs := make([]interface{}, len(columns))
	for i := range scanArgs {
		scanArgs[i] = new(interface{})
	}

	if err := rows.Scan(scanArgs...); err != nil {
		return err
	}

	for i, colName := range columns {
		field, ok := s.findStructField(destType, colName)

		if !ok || s.shouldSkipField(field) {
			continue
		}

		val := *(scanArgs[i].(*interface{}))

		if err := s.setFieldValue(destElem.FieldByIndex(field.Index), val); err != nil {
			return fmt.Errorf("column %s: %w", colName, err)
		}
	}

	return nil
}

func (s *Scanner) findStructField(structType reflect.Type, colName string) (reflect.StructField, bool) {
	colNameLower := strings.ToLower(colName)

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if tag := field.Tag.Get("db"); tag != "" && strings.ToLower(tag) == colNameLower {
			return field, true
		}
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if strings.ToLower(field.Name) == colNameLower {
			return field, true
		}
	}

	if field, found := structType.FieldByName(s.snakeToCamel(colName)); found {
		return field, true
	}

	snakeCaseName := s.camelToSnake(colName)
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if s.camelToSnake(field.Name) == snakeCaseName {
			return field, true
		}
	}

	return reflect.StructField{}, false
}

func (s *Scanner) snakeToCamel(snake string) string {
	parts := strings.Split(snake, "_")
	for i := range parts {
		if len(parts[i]) > 0 {
			parts[i] = strings.ToUpper(parts[i][:1]) + strings.ToLower(parts[i][1:])
		}
	}
	return strings.Join(parts, "")
}

func (s *Scanner) camelToSnake(camel string) string {
	var result []rune
	for i, r := range camel {
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '_')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}

func (s *Scanner) shouldSkipField(field reflect.StructField) bool {
	return field.Tag.Get("scan") == "skip"
}

func (s *Scanner) setFieldValue(field reflect.Value, val interface{}) error {
	if !field.CanSet() {
		return fmt.Errorf("field cannot be set")
	}

	if field.CanAddr() && field.Addr().Type().Implements(scannerType) {
		return field.Addr().Interface().(sql.Scanner).Scan(val)
	}

	if val == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Ptr {
		target := reflect.New(field.Type().Elem())

		if err := s.setFieldValue(target.Elem(), val); err != nil {
			return err
		}

		field.Set(target)
		return nil
	}

	if field.Type() == timeType {
		parsed, err := toTime(val)

		if err != nil {
			return err
		}

		field.Set(reflect.ValueOf(parsed))
		return nil
	}

	valValue := reflect.ValueOf(val)

	if valValue.Type().AssignableTo(field.Type()) {
		field.Set(valValue)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		switch v := val.(type) {
		case string:
			field.SetString(v)
		case []byte:
			field.SetString(string(v))
		default:
			field.SetString(fmt.Sprintf("%v", v))
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch v := val.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("cannot convert %T to %s", val, field.Type())
		}
	case reflect.Bool:
		switch v := val.(type) {
		case bool:
			field.SetBool(v)
		case int64:
			field.SetBool(v != 0)
		case string:
			field.SetBool(v == "1" || strings.EqualFold(v, "true"))
		default:
			return fmt.Errorf("cannot convert %T to bool", val)
		}
	case reflect.Float32, reflect.Float64:
		switch v := val.(type) {
		case float64:
			field.SetFloat(v)
		case int64:
			field.SetFloat(float64(v))
		default:
			return fmt.Errorf("cannot convert %T to %s", val, field.Type())
		}
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}

	return nil
}

func toTime(val interface{}) (time.Time, error) {
	var str string

	switch v := val.(type) {
	case time.Time:
		return v, nil
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", val)
	}

	str = strings.TrimSuffix(str, "Z")

	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, str); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("cannot parse time %q", str)
}
