package bridge

// Pre-recorded diagnostic payloads served by the demo backend, keyed by
// operation name. The shapes mirror what the live diagnostics server returns
// so conversations behave the same in both modes.
var demoPayloads = map[string]map[string]any{
	"diagnose_system": {
		"global_health_score": 80,
		"status":              "degraded",
		"total_entities":      412,
		"issues": []map[string]any{
			{
				"severity":    "warning",
				"category":    "availability",
				"description": "7 entities are unavailable",
				"entities":    []string{"sensor.garage_door_battery", "light.attic", "switch.pond_pump"},
			},
			{
				"severity":    "warning",
				"category":    "zigbee",
				"description": "2 Zigbee devices have weak links (LQI < 40)",
			},
			{
				"severity":    "info",
				"category":    "updates",
				"description": "3 updates available (core, 2 add-ons)",
			},
		},
		"recommendations": []string{
			"Replace the battery in sensor.garage_door_battery",
			"Add a Zigbee router near the garden shed",
			"Update Home Assistant Core to 2024.6.3",
		},
	},
	"diagnose_issue": {
		"entity_id": "sensor.living_room_temperature",
		"summary":   "Entity stopped reporting 6 hours ago",
		"severity":  "warning",
		"root_causes": []string{
			"Parent Zigbee device last seen 6h ago",
			"Device battery at 8%",
		},
		"recommended_fixes": []string{
			"Replace the CR2032 battery",
			"Re-pair the device if replacement does not help",
		},
	},
	"diagnose_automation": {
		"automation_id": "automation.morning_routine",
		"state":         "on",
		"last_triggered": "2024-06-11T06:30:00+00:00",
		"issues": []map[string]any{
			{
				"severity":    "warning",
				"description": "References unavailable entity light.attic",
			},
		},
	},
	"audit_zigbee_mesh": {
		"mesh_health_score": 90,
		"total_devices":     34,
		"routers":           9,
		"end_devices":       25,
		"weak_links": []map[string]any{
			{"device": "sensor.shed_door", "lqi": 32, "rssi": -88},
			{"device": "light.driveway", "lqi": 38, "rssi": -84},
		},
		"orphan_devices": []string{"sensor.old_motion_basement"},
		"recommendations": []string{
			"Place a router between the hub and the garden shed",
		},
	},
	"find_orphan_entities": {
		"total_orphans":     23,
		"total_entities":    412,
		"orphan_percentage": 5.6,
		"by_domain": map[string]any{
			"sensor":        11,
			"binary_sensor": 5,
			"light":         3,
			"switch":        2,
			"media_player":  2,
		},
		"orphans": []map[string]any{
			{"entity_id": "sensor.old_motion_basement", "domain": "sensor", "last_changed": "2024-03-02T14:11:09+00:00"},
			{"entity_id": "light.guest_room_lamp", "domain": "light", "last_changed": "2024-05-28T19:44:31+00:00"},
			{"entity_id": "switch.pond_pump", "domain": "switch", "last_changed": "2024-04-17T08:02:54+00:00"},
		},
	},
	"detect_automation_conflicts": {
		"total_conflicts": 2,
		"race_conditions": []map[string]any{
			{
				"entity_id":   "light.hallway",
				"automations": []string{"automation.motion_hallway", "automation.night_mode"},
				"description": "Both automations control light.hallway on overlapping triggers",
			},
		},
		"circular_dependencies": []map[string]any{
			{
				"cycle":       []string{"automation.heating_boost", "automation.window_guard"},
				"description": "heating_boost toggles a switch that triggers window_guard which re-triggers heating_boost",
			},
		},
	},
	"energy_consumption_report": {
		"period_hours":      24,
		"total_kwh":         18.4,
		"estimated_cost":    5.52,
		"currency":          "EUR",
		"top_consumers": []map[string]any{
			{"entity_id": "sensor.heat_pump_energy", "kwh": 9.1},
			{"entity_id": "sensor.dryer_energy", "kwh": 3.2},
			{"entity_id": "sensor.server_rack_energy", "kwh": 2.4},
		},
		"recommendations": []string{
			"Shift dryer cycles to the off-peak tariff window",
		},
	},
	"battery_report": {
		"total_battery_devices": 28,
		"low_battery_count":     3,
		"critical": []map[string]any{
			{"entity_id": "sensor.garage_door_battery", "level": 8},
		},
		"low": []map[string]any{
			{"entity_id": "sensor.front_door_battery", "level": 17},
			{"entity_id": "sensor.bedroom_remote_battery", "level": 19},
		},
	},
	"find_unavailable_entities": {
		"count": 7,
		"entities": []map[string]any{
			{"entity_id": "light.attic", "last_changed": "2024-06-09T22:15:40+00:00"},
			{"entity_id": "switch.pond_pump", "last_changed": "2024-06-10T05:51:12+00:00"},
			{"entity_id": "sensor.garage_door_battery", "last_changed": "2024-06-11T01:03:27+00:00"},
		},
	},
	"find_stale_entities": {
		"threshold_hours": 2,
		"count":           4,
		"entities": []map[string]any{
			{"entity_id": "sensor.living_room_temperature", "hours_stale": 6.2},
			{"entity_id": "sensor.attic_humidity", "hours_stale": 12.8},
		},
	},
	"get_repair_items": {
		"count": 2,
		"items": []map[string]any{
			{"issue_id": "deprecated_yaml_weather", "severity": "warning", "description": "YAML configuration for weather is deprecated"},
			{"issue_id": "unsupported_os_version", "severity": "warning", "description": "Operating system version is no longer supported"},
		},
	},
	"get_update_status": {
		"updates_available": 3,
		"items": []map[string]any{
			{"name": "Home Assistant Core", "installed": "2024.6.1", "latest": "2024.6.3"},
			{"name": "Mosquitto broker", "installed": "6.4.0", "latest": "6.4.1"},
			{"name": "Zigbee2MQTT", "installed": "1.38.0", "latest": "1.39.0"},
		},
	},
	"get_error_log": {
		"count": 3,
		"errors": []map[string]any{
			{"level": "ERROR", "logger": "homeassistant.components.zha", "message": "Device 0x8f21 did not respond to command", "count": 12},
			{"level": "WARNING", "logger": "homeassistant.helpers.entity", "message": "Update of sensor.attic_humidity is taking over 10 seconds", "count": 4},
			{"level": "ERROR", "logger": "homeassistant.components.recorder", "message": "Database queue backlog reached 80%", "count": 1},
		},
	},
	"list_entities": {
		"total_count": 412,
		"entities": []map[string]any{
			{"entity_id": "light.hallway", "state": "off", "domain": "light"},
			{"entity_id": "light.attic", "state": "unavailable", "domain": "light"},
			{"entity_id": "sensor.living_room_temperature", "state": "21.4", "domain": "sensor"},
			{"entity_id": "switch.pond_pump", "state": "unavailable", "domain": "switch"},
			{"entity_id": "binary_sensor.front_door", "state": "off", "domain": "binary_sensor"},
		},
	},
	"list_automations": {
		"count": 4,
		"automations": []map[string]any{
			{"entity_id": "automation.morning_routine", "alias": "Morning routine", "state": "on"},
			{"entity_id": "automation.motion_hallway", "alias": "Hallway motion lights", "state": "on"},
			{"entity_id": "automation.night_mode", "alias": "Night mode", "state": "on"},
			{"entity_id": "automation.heating_boost", "alias": "Heating boost", "state": "on"},
		},
	},
	"get_entity_statistics": {
		"entity_id":    "sensor.living_room_temperature",
		"period_hours": 24,
		"min":          19.1,
		"max":          23.8,
		"mean":         21.6,
		"sample_count": 288,
	},
}

// DemoDataset exposes the demo payloads keyed by operation name, used to
// seed the diagnostics knowledge base.
func DemoDataset() map[string]map[string]any {
	out := make(map[string]map[string]any, len(demoPayloads))
	for name, payload := range demoPayloads {
		out[name] = payload
	}
	return out
}

// Markdown reports served by the demo backend's resource lookup.
var demoResources = map[string]string{
	"ha://diagnostics/system-health": `# System Health Report

Overall health score: **80/100** (degraded)

- 7 entities unavailable
- 3 updates pending
- 2 automation conflicts detected
`,
	"ha://diagnostics/zigbee-mesh": `# Zigbee Mesh Report

Mesh health score: **90/100**

34 devices (9 routers, 25 end devices). Two weak links below LQI 40,
both near the garden shed. One orphan device without a route.
`,
}
