package domain

// Canonical fact keys. Producers must emit these keys; free-form keys
// are allowed but never mandatory.
const (
	KeyTransportMode      = "transport.mode"
	KeyOriginCountry      = "routing.origin_country"
	KeyOriginPort         = "routing.origin_port"
	KeyOriginCity         = "routing.origin_city"
	KeyDestinationCountry = "routing.destination_country"
	KeyDestinationPort    = "routing.destination_port"
	KeyDestinationCity    = "routing.destination_city"
	KeyIncoterm           = "routing.incoterm"
	KeyGrossWeightKg      = "cargo.weight_kg"
	KeyVolumeCbm          = "cargo.volume_cbm"
	KeyChargeableWeightKg = "cargo.chargeable_weight_kg"
	KeyChargeableRule     = "cargo.chargeable_weight_rule"
	KeyContainers         = "cargo.containers"
	KeyDescription        = "cargo.description"
	KeyHSCode             = "cargo.hs_code"
	KeyGoodsValue         = "cargo.value"
	KeyArticlesDetail     = "cargo.articles_detail"
	KeyShipper            = "parties.shipper"
	KeyConsignee          = "parties.consignee"
	KeyClientCode         = "parties.client_code"
	KeyServiceLevel       = "quote.service_level"
	KeyCurrency           = "quote.currency"
	KeyTaxRate            = "quote.tax_rate"
)

// Transport mode values stored under KeyTransportMode.
const (
	ModeSea = "sea"
	ModeAir = "air"
)

// Categories group fact keys for display and gap questions.
const (
	CategoryRouting = "routing"
	CategoryCargo   = "cargo"
	CategoryParties = "parties"
	CategoryQuote   = "quote"
)
