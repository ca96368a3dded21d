package rapidapi

import (
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/mmcdole/flightdeck/internal/domain"
)

const unknownAirline = "Unknown Airline"

// ParseFlights normalizes a searchFlights response body for one result page.
// IDs are "{flight_number|unknown}-{page}-{index}" so they stay unique when
// pages are accumulated. It returns domain.ErrParse when the body has no
// status flag or no topFlights list.
func ParseFlights(body []byte, page int) ([]domain.FlightOffer, error) {
	if page < 1 {
		page = 1
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON: %w", domain.ErrParse)
	}
	doc := gjson.ParseBytes(body)
	if !doc.Get("status").Bool() {
		return nil, fmt.Errorf("status missing or false: %w", domain.ErrParse)
	}
	top := doc.Get("data.itineraries.topFlights")
	if !top.IsArray() {
		return nil, fmt.Errorf("data.itineraries.topFlights missing: %w", domain.ErrParse)
	}

	items := top.Array()
	flights := make([]domain.FlightOffer, 0, len(items))
	for i, item := range items {
		flights = append(flights, normalize(page, i, item))
	}
	return flights, nil
}

// normalize maps one loosely shaped itinerary onto FlightOffer.
// Absent fields become empty strings or zero.
func normalize(page, i int, item gjson.Result) domain.FlightOffer {
	leg := item.Get("flights.0")

	flightNumber := leg.Get("flight_number").String()
	idPrefix := flightNumber
	if idPrefix == "" {
		idPrefix = "unknown"
	}

	title := leg.Get("airline").String()
	if title == "" {
		title = unknownAirline
	}

	duration := item.Get("duration.text").String()
	if duration == "" {
		duration = leg.Get("duration.text").String()
	}

	price := item.Get("price").Float()
	if price < 0 {
		price = 0
	}

	var extensions []string
	for _, ext := range leg.Get("extensions").Array() {
		if s := ext.String(); s != "" {
			extensions = append(extensions, s)
		}
	}

	return domain.FlightOffer{
		ID:           idPrefix + "-" + strconv.Itoa(page) + "-" + strconv.Itoa(i),
		Title:        title,
		Route:        leg.Get("departure_airport.airport_code").String() + " → " + leg.Get("arrival_airport.airport_code").String(),
		Duration:     duration,
		Price:        price,
		Status:       domain.StopsStatus(stopCount(item)),
		FlightNumber: flightNumber,
		Aircraft:     leg.Get("aircraft").String(),
		Seat:         leg.Get("seat").String(),
		Legroom:      leg.Get("legroom").String(),
		AirlineLogo:  leg.Get("airline_logo").String(),
		Extensions:   extensions,
	}
}

// stopCount reads "stops", falling back to the number of legs minus one
func stopCount(item gjson.Result) int {
	if stops := item.Get("stops"); stops.Exists() {
		return int(stops.Int())
	}
	if legs := item.Get("flights.#").Int(); legs > 1 {
		return int(legs - 1)
	}
	return 0
}
