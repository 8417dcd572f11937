package reference

// Colorado returns the built-in table of Colorado resorts.
func Colorado() *Table {
	return NewTable(coloradoEntries)
}

var coloradoEntries = []Entry{
	{CanonicalName: "Arapahoe Basin", Aliases: []string{"A-Basin"}, Lat: 39.634108, Lng: -105.87147, TotalTrails: 147, TotalLifts: 9},
	{CanonicalName: "Aspen Highlands", Lat: 39.1820055, Lng: -106.8564, TotalTrails: 118, TotalLifts: 5},
	{CanonicalName: "Aspen Mountain", Aliases: []string{"Ajax"}, Lat: 39.1862685, Lng: -106.81821, TotalTrails: 76, TotalLifts: 8},
	{CanonicalName: "Beaver Creek", Lat: 39.6016505, Lng: -106.53161, TotalTrails: 167, TotalLifts: 25},
	{CanonicalName: "Breckenridge", Lat: 39.4782643, Lng: -106.07232, TotalTrails: 187, TotalLifts: 35},
	{CanonicalName: "Buttermilk", Lat: 39.2058029, Lng: -106.86107, TotalTrails: 44, TotalLifts: 9},
	{CanonicalName: "Cooper", Aliases: []string{"Ski Cooper"}, Lat: 39.3601951, Lng: -106.30145, TotalTrails: 64, TotalLifts: 5},
	{CanonicalName: "Copper Mountain", Lat: 39.5004501, Lng: -106.15578, TotalTrails: 158, TotalLifts: 24},
	{CanonicalName: "Crested Butte", Lat: 38.8991036, Lng: -106.96576, TotalTrails: 121, TotalLifts: 15},
	{CanonicalName: "Echo Mountain", Lat: 39.6845817, Lng: -105.51939, TotalTrails: 11, TotalLifts: 2},
	{CanonicalName: "Eldora", Lat: 39.9372203, Lng: -105.58268, TotalTrails: 67, TotalLifts: 11},
	{CanonicalName: "Granby Ranch", Lat: 40.0446489, Lng: -105.90633, TotalTrails: 42, TotalLifts: 5},
	{CanonicalName: "Hesperus", Lat: 37.2991673, Lng: -108.05513, TotalTrails: 26, TotalLifts: 1},
	{CanonicalName: "Howelsen Hill", Lat: 40.4833683, Lng: -106.83797, TotalTrails: 17, TotalLifts: 4},
	{CanonicalName: "Kendall Mountain", Lat: 37.8111854, Lng: -107.65682, TotalTrails: 4, TotalLifts: 1},
	{CanonicalName: "Keystone", Lat: 39.5816989, Lng: -105.94367, TotalTrails: 140, TotalLifts: 21},
	{CanonicalName: "Loveland", Lat: 39.6775332, Lng: -105.90536, TotalTrails: 94, TotalLifts: 10},
	{CanonicalName: "Monarch", Lat: 38.5120635, Lng: -106.33197, TotalTrails: 67, TotalLifts: 8},
	{CanonicalName: "Powderhorn", Lat: 39.0693741, Lng: -108.15071, TotalTrails: 63, TotalLifts: 4},
	{CanonicalName: "Purgatory", Aliases: []string{"Durango Mountain Resort"}, Lat: 37.6276821, Lng: -107.83761, TotalTrails: 105, TotalLifts: 12},
	{CanonicalName: "Silverton", Lat: 37.884608, Lng: -107.66592, TotalTrails: 69, TotalLifts: 1},
	{CanonicalName: "Snowmass", Lat: 39.2130418, Lng: -106.93782, TotalTrails: 98, TotalLifts: 17},
	{CanonicalName: "Steamboat", Aliases: []string{"Steamboat Springs"}, Lat: 40.4537983, Lng: -106.77088, TotalTrails: 182, TotalLifts: 23},
	{CanonicalName: "Sunlight", Lat: 39.3997821, Lng: -107.33876, TotalTrails: 72, TotalLifts: 4},
	{CanonicalName: "Telluride", Lat: 37.9166674, Lng: -107.83748, TotalTrails: 148, TotalLifts: 18},
	{CanonicalName: "Vail", Lat: 39.6061444, Lng: -106.35497, TotalTrails: 277, TotalLifts: 31},
	{CanonicalName: "Winter Park", Lat: 39.8627761, Lng: -105.77874, TotalTrails: 168, TotalLifts: 25},
	{CanonicalName: "Wolf Creek", Lat: 37.4717059, Lng: -106.78829, TotalTrails: 133, TotalLifts: 10},
}
