/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package rotation

import "time"

const (
	iconAvarice        = "\U0001F4B0"
	iconAzmodan        = "\U0001F47F"
	iconAshava         = "\U0001F479"
	iconWanderingDeath = "\U0001F480"
)

// World boss schedule, taken from a known spawn on 2025-12-29 08:30 UTC.
var (
	WorldBossAnchor   = time.Unix(1766997000, 0).UTC()
	WorldBossInterval = 6300 * time.Second
)

var worldBossTable = Table{
	{Label: "Avarice", Zone: "Fractured Peaks", Icon: iconAvarice},
	{Label: "Azmodan", Zone: "Fractured Peaks", Icon: iconAzmodan},
	{Label: "Avarice", Zone: "Dry Steppes", Icon: iconAvarice},
	{Label: "Azmodan", Zone: "Kehjistan", Icon: iconAzmodan},
	{Label: "Ashava", Zone: "Fractured Peaks", Icon: iconAshava},
	{Label: "Azmodan", Zone: "Nahantu", Icon: iconAzmodan},
	{Label: "Ashava", Zone: "Dry Steppes", Icon: iconAshava},
	{Label: "Azmodan", Zone: "Nahantu", Icon: iconAzmodan},
	{Label: "Ashava", Zone: "Scosglen", Icon: iconAshava},
	{Label: "Azmodan", Zone: "Scosglen", Icon: iconAzmodan},
	{Label: "Wandering Death", Zone: "Kehjistan", Icon: iconWanderingDeath},
	{Label: "Azmodan", Zone: "Fractured Peaks", Icon: iconAzmodan},
	{Label: "Wandering Death", Zone: "Dry Steppes", Icon: iconWanderingDeath},
	{Label: "Azmodan", Zone: "Kehjistan", Icon: iconAzmodan},
	{Label: "Avarice", Zone: "Nahantu", Icon: iconAvarice},
	{Label: "Azmodan", Zone: "Scosglen", Icon: iconAzmodan},
	{Label: "Avarice", Zone: "Fractured Peaks", Icon: iconAvarice},
	{Label: "Azmodan", Zone: "Dry Steppes", Icon: iconAzmodan},
	{Label: "Ashava", Zone: "Kehjistan", Icon: iconAshava},
	{Label: "Azmodan", Zone: "Nahantu", Icon: iconAzmodan},
}

// WorldBossTable returns a copy of the world boss rotation.
func WorldBossTable() Table {
	t := make(Table, len(worldBossTable))
	copy(t, worldBossTable)
	return t
}

// WorldBoss returns the resolver for the world boss rotation.
func WorldBoss() *Resolver {
	r, err := NewResolver(WorldBossAnchor, WorldBossInterval, worldBossTable)
	if err != nil {
		panic("rotation: invalid world boss constants: " + err.Error())
	}
	return r
}
