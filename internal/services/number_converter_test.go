package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumberToWords(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected string
	}{
		{"Zero", 0, "CERO DÓLARES CON 00/100"},
		{"Single Unit", 5, "CINCO DÓLARES CON 00/100"},
		{"Teens", 15, "QUINCE DÓLARES CON 00/100"},
		{"Twenties", 22, "VEINTIDÓS DÓLARES CON 00/100"},
		{"Compound Tens", 47, "CUARENTA Y SIETE DÓLARES CON 00/100"},
		{"Exact Hundred", 100, "CIEN DÓLARES CON 00/100"},
		{"Hundred And Change", 101, "CIENTO UNO DÓLARES CON 00/100"},
		{"Hundreds", 350.25, "TRESCIENTOS CINCUENTA DÓLARES CON 25/100"},
		{"Exact Thousand", 1000, "MIL DÓLARES CON 00/100"},
		{"Thousands With Cents", 1500.50, "MIL QUINIENTOS DÓLARES CON 50/100"},
		{"Multiple Thousands", 25340, "VEINTICINCO MIL TRESCIENTOS CUARENTA DÓLARES CON 00/100"},
		{"One Million", 1000000, "UN MILLÓN DÓLARES CON 00/100"},
		{"Millions", 2500000, "DOS MILLONES QUINIENTOS MIL DÓLARES CON 00/100"},
		{"Cents Only", 10.99, "DIEZ DÓLARES CON 99/100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NumberToWords(tt.amount))
		})
	}
}
