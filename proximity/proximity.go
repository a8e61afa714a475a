package proximity

import (
	"errors"
	"sort"

	"swift-store/geo"
	"swift-store/models"
)

// UnknownDistance is reported when either side has no stored location.
// Such entries always sort after everything measurable.
const UnknownDistance = 9999.0

// DefaultRadiusKm is the nearby-vendor search radius
const DefaultRadiusKm = 5.0

var ErrNoLocation = errors.New("customer location not set")

// RankedProduct is a product as shown on the customer storefront
type RankedProduct struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Image    string  `json:"image"`
	VendorID uint    `json:"vendor_id"`
	Store    string  `json:"store"`
	Distance float64 `json:"distance"`
	Known    bool    `json:"distance_known"`
}

type NearbyVendor struct {
	ID          uint    `json:"id"`
	Email       string  `json:"email"`
	CompanyName string  `json:"company_name"`
	Address     string  `json:"address"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Distance    float64 `json:"distance"`
}

func pointOf(u *models.User) geo.Point {
	return geo.Point{Lat: *u.Latitude, Lon: *u.Longitude}
}

// RankProducts orders products by the distance between customer and each
// product's vendor. Products keep their input order among equal distances.
// vendors is keyed by user id; a product whose vendor is missing is treated
// as location-less.
func RankProducts(customer *models.User, products []models.Product, vendors map[uint]models.User) []RankedProduct {
	ranked := make([]RankedProduct, 0, len(products))
	for _, p := range products {
		rp := RankedProduct{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price,
			Category: p.Category,
			Image:    p.Image,
			VendorID: p.VendorID,
			Distance: UnknownDistance,
		}

		vendor, ok := vendors[p.VendorID]
		if ok {
			rp.Store = vendor.DisplayName()
		}
		if ok && customer != nil && customer.HasLocation() && vendor.HasLocation() {
			rp.Distance = geo.Distance(pointOf(customer), pointOf(&vendor))
			rp.Known = true
		}
		ranked = append(ranked, rp)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Known != ranked[j].Known {
			return ranked[i].Known
		}
		return ranked[i].Distance < ranked[j].Distance
	})
	for i := range ranked {
		ranked[i].Distance = geo.Round2(ranked[i].Distance)
	}
	return ranked
}

// NearbyVendors returns vendors whose distance from the customer, rounded to
// 2 decimals, is at most radiusKm, closest first.
func NearbyVendors(customer *models.User, vendors []models.User, radiusKm float64) ([]NearbyVendor, error) {
	if customer == nil || !customer.HasLocation() {
		return nil, ErrNoLocation
	}
	origin := pointOf(customer)

	nearby := []NearbyVendor{}
	for i := range vendors {
		v := &vendors[i]
		if !v.HasLocation() {
			continue
		}
		d := geo.Round2(geo.Distance(origin, pointOf(v)))
		if d > radiusKm {
			continue
		}
		nv := NearbyVendor{
			ID:        v.ID,
			Email:     v.Email,
			Latitude:  *v.Latitude,
			Longitude: *v.Longitude,
			Distance:  d,
		}
		if v.CompanyName != nil {
			nv.CompanyName = *v.CompanyName
		}
		if v.Address != nil {
			nv.Address = *v.Address
		}
		nearby = append(nearby, nv)
	}

	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})
	return nearby, nil
}
