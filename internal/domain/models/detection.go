package models

import "time"

// Frame is one image captured from the camera feed, kept as encoded bytes
// so the backend never needs to understand the pixel format itself.
type Frame struct {
	Data       []byte
	MediaType  string
	CapturedAt time.Time
}

// Point is a pixel coordinate inside a frame.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Detection is one machine-readable code decoded from a frame.
type Detection struct {
	Value     string  `json:"value"`
	Symbology string  `json:"symbology"`
	Polygon   []Point `json:"polygon"`
}

// Sighting is one decode event, including repeats of codes already
// registered. Sightings feed the audit archive, never the registry.
type Sighting struct {
	ItemID     string    `bson:"item_id"`
	Symbology  string    `bson:"symbology"`
	Station    string    `bson:"station"`
	ObservedAt time.Time `bson:"observed_at"`
}
