package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// LatLng is a plain latitude/longitude pair used by check-ins and
// transient location shares.
type LatLng struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Situation categories. "other" is the catch-all.
const (
	CategoryWedding      = "wedding"
	CategoryFitness      = "fitness"
	CategoryTravel       = "travel"
	CategoryCultural     = "cultural"
	CategorySocial       = "social"
	CategoryProfessional = "professional"
	CategoryOther        = "other"
)

// Urgency levels for a situation.
const (
	UrgencyFlexible = "flexible"
	UrgencySoon     = "soon"
	UrgencyUrgent   = "urgent"
)

// ValidCategory reports whether c is a known situation category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryWedding, CategoryFitness, CategoryTravel, CategoryCultural,
		CategorySocial, CategoryProfessional, CategoryOther:
		return true
	}
	return false
}

// ValidUrgency reports whether u is a known urgency level.
func ValidUrgency(u string) bool {
	switch u {
	case UrgencyFlexible, UrgencySoon, UrgencyUrgent:
		return true
	}
	return false
}
