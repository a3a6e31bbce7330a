package entity

// NoObjectInfo ответ для метки, которой нет в справочнике.
const NoObjectInfo = "No information available for this object."

var objectDescriptions = map[string]string{
	LabelFireExtinguisher: "A critical safety device for suppressing fires. On a space station, it uses a non-toxic agent to avoid contaminating the atmosphere. Regular checks are essential for crew safety.",
	LabelOxygenTank:       "Provides breathable air for the crew. These tanks are carefully monitored for pressure and leaks. A single tank can sustain life for a specific duration, making them a high-priority asset.",
	LabelToolbox:          "Contains essential tools for maintenance and repairs. A well-organized toolbox is crucial for efficient operations. Misplaced tools can pose a serious hazard in a zero-gravity environment.",
}

// ObjectInfo справка по выбранному объекту.
type ObjectInfo struct {
	Label string
	Info  string
}

// LookupObjectInfo возвращает справку по метке из статического справочника.
func LookupObjectInfo(label string) ObjectInfo {
	info, ok := objectDescriptions[label]
	if !ok {
		info = NoObjectInfo
	}
	return ObjectInfo{Label: label, Info: info}
}
