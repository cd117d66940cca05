package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Rate is one quoted shipping option presented at checkout.
type Rate struct {
	ID         string
	MethodID   string
	InstanceID InstanceID
	Label      string
	Cost       float64
}

// Package carries the cart contents a rate is quoted for.
type Package struct {
	Contents    int
	ContentCost float64
	Destination string
}

// RateID builds the composite "methodId:instanceId" identifier.
func RateID(methodID string, id InstanceID) string {
	return fmt.Sprintf("%s:%d", methodID, id)
}

// ParseRateID splits a chosen rate identifier. ok is false when the id
// has no positive numeric instance part.
func ParseRateID(rateID string) (methodID string, id InstanceID, ok bool) {
	idx := strings.LastIndex(rateID, ":")
	if idx <= 0 || idx == len(rateID)-1 {
		return rateID, 0, false
	}
	n, err := strconv.ParseInt(rateID[idx+1:], 10, 64)
	if err != nil || n <= 0 {
		return rateID[:idx], 0, false
	}
	return rateID[:idx], InstanceID(n), true
}

// CarrierInstanceOf returns the instance id if the rate belongs to a
// carrier-selecting method of this module.
func CarrierInstanceOf(rateID string) (InstanceID, bool) {
	methodID, id, ok := ParseRateID(rateID)
	if !ok || !IsCarrierMethod(methodID) {
		return 0, false
	}
	return id, true
}
