package extract

// VolumetricFactor is the fixed IATA kg-per-cbm conversion used for
// chargeable weight.
const VolumetricFactor = 167.0

// ChargeableRuleID tags the computed chargeable-weight fact for audit.
const ChargeableRuleID = "IATA_167"

// ChargeableWeightKg computes the billing weight: the greater of the
// actual gross weight and the volumetric weight.
func ChargeableWeightKg(grossKg, volumeCbm float64) float64 {
	volumetric := volumeCbm * VolumetricFactor
	if grossKg > volumetric {
		return grossKg
	}
	return volumetric
}
