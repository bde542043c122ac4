// Package domain models NEXRAD Level-III radar products and the transforms
// that turn a raw data-service record into a geographic sweep.
//
// # Products
//
// A [Product] carries the numeric product ID sent to the data service, the
// primary elevation angle, the range-gate resolution in metres and the color
// table used for plotting. Products live in an immutable [Catalog] that is
// built once at startup and passed explicitly.
//
// # Requests
//
// Fetching is two-step. A [DataRequest] scoped to the "radar" datatype and a
// lowercase site lists the available observation times; their earliest and
// latest values form a [TimeRange]. A [ProductRequest] then carries the site,
// product ID, elevation and time range.
//
// # Payload encoding
//
// Each record embeds named arrays:
//
//	Data             signed bytes, sizes [radials, gates], row-major by radial
//	Angles           one float azimuth per radial, degrees
//	DependentValues  shorts
//	Thresholds       shorts
//
// Bytes are stored as two's complement: raw -5 is level 251. Azimuths are
// padded with a repeated last value so the azimuth axis has radials+1
// entries, mirroring the gates+1 bin edges of the range axis.
//
// # Projection
//
// [Project] reckons each (range, azimuth) pair from the site location and
// stores the result in a [GeoGrid] indexed [rangeIndex][azimuthIndex].
package domain
