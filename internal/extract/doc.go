// Package extract contains the deterministic extraction rules shared
// by the regex fallback extractor and the post-processing applied to
// AI oracle output: transport-mode arbitration, incoterm selection,
// container parsing, destination-city filtering and the chargeable
// weight computation.
//
// All lookup tables are immutable package-level configuration; no
// function here touches a store or the network.
package extract
