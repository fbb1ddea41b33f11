package main

import "github.com/noah-isme/toko-pricing/internal/vat"

// euStandardRates are the standard VAT rates of EU member states in basis points.
var euStandardRates = []vat.Rate{
	{CountryCode: "AT", Rate: 2000},
	{CountryCode: "BE", Rate: 2100},
	{CountryCode: "BG", Rate: 2000},
	{CountryCode: "CY", Rate: 1900},
	{CountryCode: "CZ", Rate: 2100},
	{CountryCode: "DE", Rate: 1900},
	{CountryCode: "DK", Rate: 2500},
	{CountryCode: "EE", Rate: 2400},
	{CountryCode: "ES", Rate: 2100},
	{CountryCode: "FI", Rate: 2550},
	{CountryCode: "FR", Rate: 2000},
	{CountryCode: "GR", Rate: 2400},
	{CountryCode: "HR", Rate: 2500},
	{CountryCode: "HU", Rate: 2700},
	{CountryCode: "IE", Rate: 2300},
	{CountryCode: "IT", Rate: 2200},
	{CountryCode: "LT", Rate: 2100},
	{CountryCode: "LU", Rate: 1700},
	{CountryCode: "LV", Rate: 2100},
	{CountryCode: "MT", Rate: 1800},
	{CountryCode: "NL", Rate: 2100},
	{CountryCode: "PL", Rate: 2300},
	{CountryCode: "PT", Rate: 2300},
	{CountryCode: "RO", Rate: 2100},
	{CountryCode: "SE", Rate: 2500},
	{CountryCode: "SI", Rate: 2200},
	{CountryCode: "SK", Rate: 2300},
}
