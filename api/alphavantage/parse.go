package alphavantage

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"maps"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"

	ex "github.com/fundbuilder/saver/extensions"
	m "github.com/fundbuilder/saver/models"
)

var (
	timeSeriesDateFormats = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
	}

	// bar fields matched by key suffix, since the api numbers its keys
	// ("1. open", "2. high", ...) differently per function
	ohlcvResultKeys = map[string]string{
		"Open":   ". open",
		"High":   ". high",
		"Low":    ". low",
		"Close":  ". close",
		"Volume": ". volume",
	}
)

func parseRawJson(reader io.Reader) (raw map[string]json.RawMessage, err error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	return
}

// checkForApiFault catches the polite refusals the api delivers with a 200:
// bad symbols, rate limiting, and premium-only functions.
func checkForApiFault(raw map[string]json.RawMessage) error {
	if _, ok := raw["Meta Data"]; ok {
		return nil
	}

	for _, key := range []string{"Error Message", "Note", "Information"} {
		if msg, ok := raw[key]; ok {
			var text string
			if err := json.Unmarshal(msg, &text); err != nil {
				text = string(msg)
			}
			return fmt.Errorf("alpha vantage rejected the request: %s", text)
		}
	}

	return fmt.Errorf("alpha vantage response has no metadata")
}

func parseMetadata(raw map[string]json.RawMessage) (*m.SeriesMetadata, *time.Location, error) {
	var metadataElements map[string]string
	if err := json.Unmarshal(raw["Meta Data"], &metadataElements); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling meta data: %w", err)
	}

	metadataKeys := slices.Collect(maps.Keys(metadataElements))

	// the keys are numbered per function, so match by suffix
	sf := func(s string) bool { return strings.HasSuffix(s, ". Symbol") }
	symbolKey, err := ex.FilterSingle(metadataKeys, sf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting symbol from meta data")
	}

	tzf := func(s string) bool { return strings.HasSuffix(s, ". Time Zone") }
	timeZoneKey, err := ex.FilterSingle(metadataKeys, tzf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting time zone from meta data")
	}

	timeZone, err := getTimeZone(metadataElements[timeZoneKey])
	if err != nil {
		return nil, nil, fmt.Errorf("error converting time zone key %s to time.Location: %w", metadataElements[timeZoneKey], err)
	}

	lrf := func(s string) bool { return strings.HasSuffix(s, ". Last Refreshed") }
	lastRefreshedKey, err := ex.FilterSingle(metadataKeys, lrf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting last refreshed date from meta data")
	}

	lastRefreshed, err := parseDate(metadataElements[lastRefreshedKey], timeZone)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing last refreshed date")
	}

	res := m.SeriesMetadata{
		Symbol:        metadataElements[symbolKey],
		LastRefreshed: lastRefreshed,
		TimeZone:      metadataElements[timeZoneKey],
	}

	return &res, timeZone, nil
}

func parseSeriesPoints(raw map[string]json.RawMessage, series TimeSeries, location *time.Location) ([]*m.SeriesPoint, error) {
	rawSeries, ok := raw[series.ResponseKey()]
	if !ok {
		return nil, fmt.Errorf("response is missing the %q series", series.ResponseKey())
	}

	var elements map[string]map[string]string
	if err := json.Unmarshal(rawSeries, &elements); err != nil {
		return nil, fmt.Errorf("error unmarshaling time series: %w", err)
	}

	if len(elements) == 0 {
		return []*m.SeriesPoint{}, nil
	}

	var firstValue map[string]string
	for _, v := range elements {
		firstValue = v
		break
	}

	ohlcvLookup, err := getLookupKey(ohlcvResultKeys, firstValue)
	if err != nil {
		return nil, err
	}

	// adjusted series carry two extra fields
	var adjustedCloseKey, dividendAmountKey string
	if series.IsAdjusted() {
		valueKeys := slices.Collect(maps.Keys(firstValue))

		acf := func(s string) bool { return strings.HasSuffix(s, ". adjusted close") }
		adjustedCloseKey, err = ex.FilterSingle(valueKeys, acf)
		if err != nil {
			return nil, fmt.Errorf("error extracting adjusted close key for time series")
		}

		daf := func(s string) bool { return strings.HasSuffix(s, ". dividend amount") }
		dividendAmountKey, err = ex.FilterSingle(valueKeys, daf)
		if err != nil {
			return nil, fmt.Errorf("error extracting dividend amount key for time series")
		}
	}

	points := make([]*m.SeriesPoint, 0, len(elements))
	for elementKey, elementValue := range elements {
		timestamp, err := parseDate(elementKey, location)
		if err != nil {
			return nil, fmt.Errorf("error converting timestamp from string to time.Time: %w", err)
		}

		point := &m.SeriesPoint{Timestamp: timestamp}
		if err := setBarFields(point, elementValue, ohlcvLookup); err != nil {
			return nil, fmt.Errorf("error parsing bar fields: %w", err)
		}

		if series.IsAdjusted() {
			point.AdjustedClose = parseNullFloat(elementValue[adjustedCloseKey])
			point.DividendAmount = parseNullFloat(elementValue[dividendAmountKey])
		}

		points = append(points, point)
	}

	// the response maps iterate in no particular order
	slices.SortFunc(points, func(a, b *m.SeriesPoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})

	return points, nil
}

// setBarFields writes response values onto point by field name, using the
// lookup built from the response's own key numbering.
func setBarFields(point *m.SeriesPoint, value, lookup map[string]string) error {
	v := reflect.ValueOf(point).Elem()
	for jsonKey, structAttribute := range lookup {
		field := v.FieldByName(structAttribute)
		if !field.IsValid() {
			return fmt.Errorf("field %s does not exist", structAttribute)
		}
		if !field.CanSet() {
			return fmt.Errorf("field %s cannot be set", structAttribute)
		}

		field.Set(reflect.ValueOf(parseNullFloat(value[jsonKey])))
	}
	return nil
}

func getLookupKey(expectedKeys, values map[string]string) (map[string]string, error) {
	res := make(map[string]string)
	responseValueHeaders := slices.Collect(maps.Keys(values))

	for key, value := range expectedKeys {
		f := func(s string) bool {
			return strings.HasSuffix(strings.ToLower(s), strings.ToLower(value))
		}
		if jsonKey, err := ex.FilterSingle(responseValueHeaders, f); err == nil {
			res[jsonKey] = key
		}
	}

	if len(res) == 0 {
		return nil, fmt.Errorf("error generating key value map from av response object. Available headers: %v", responseValueHeaders)
	}

	return res, nil
}

func getTimeZone(location string) (*time.Location, error) {
	var loc string
	switch strings.ToUpper(location) {
	case "US/EASTERN":
		loc = "America/New_York"
	default:
		log.Printf("default time zone hit, %s is not recognized", location)
		return time.UTC, nil
	}

	res, err := time.LoadLocation(loc)
	if err != nil {
		return nil, fmt.Errorf("error parsing time zone %s in time.LoadLocation", loc)
	}

	return res, nil
}

func parseDate(dateString string, location *time.Location) (time.Time, error) {
	for _, format := range timeSeriesDateFormats {
		t, err := time.ParseInLocation(format, dateString, location)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("error converting date %s to time.Time", dateString)
}

func parseNullFloat(val string) null.Float {
	if val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return null.FloatFrom(f)
		}
	}
	return null.Float{}
}
