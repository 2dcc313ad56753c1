// README: Pricing rate definition for each vehicle class.
package pricing

type Rate struct {
	VehicleType string
	BaseFare    int64 // minor units
	PerKm       int64
	PerMin      int64
	Currency    string
}

// defaultRates back the service when no rates table is loaded.
var defaultRates = map[string]Rate{
	"bike":    {VehicleType: "bike", BaseFare: 2000, PerKm: 700, PerMin: 100, Currency: "INR"},
	"auto":    {VehicleType: "auto", BaseFare: 3000, PerKm: 1100, PerMin: 150, Currency: "INR"},
	"car":     {VehicleType: "car", BaseFare: 5000, PerKm: 1500, PerMin: 200, Currency: "INR"},
	"premium": {VehicleType: "premium", BaseFare: 8000, PerKm: 2200, PerMin: 300, Currency: "INR"},
	"parcel":  {VehicleType: "parcel", BaseFare: 2500, PerKm: 800, PerMin: 100, Currency: "INR"},
}
