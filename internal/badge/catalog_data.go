package badge

// definitions is the shipped badge catalog.
// IDs are persisted in user award records, so never rename one.
func definitions() []Definition {
	return []Definition{
		// journey
		{
			ID:           "first_words",
			Name:         "First Words",
			Category:     CategoryJourney,
			Tier:         TierBronze,
			Description:  "Write your first journal entry",
			Insight:      "Every story starts with a single page. You just wrote yours.",
			Icon:         IconSparkles,
			Requirements: []Requirement{{Type: RequirementCount, Threshold: 1}},
			Rarity:       95,
			Order:        10,
		},
		{
			ID:           "week_warrior",
			Name:         "Week Warrior",
			Category:     CategoryJourney,
			Tier:         TierSilver,
			Description:  "Journal on 5 different days within a week",
			Insight:      "Showing up most days is how habits take root.",
			Icon:         IconFlame,
			Requirements: []Requirement{{Type: RequirementStreak, Threshold: 5, Window: 7, Condition: ConditionFlexibleStreak}},
			Rarity:       60,
			Order:        20,
		},
		{
			ID:           "steady_flame",
			Name:         "Steady Flame",
			Category:     CategoryJourney,
			Tier:         TierPlatinum,
			Description:  "Journal 30 days in a row",
			Insight:      "A month without missing a day. Your practice has become part of you.",
			Icon:         IconFlame,
			Requirements: []Requirement{{Type: RequirementStreak, Threshold: 30, Condition: ConditionConsecutiveDays}},
			Rarity:       8,
			Order:        30,
		},
		{
			ID:           "voice_keeper",
			Name:         "Voice Keeper",
			Category:     CategoryJourney,
			Tier:         TierSilver,
			Description:  "Record 25 voice entries",
			Insight:      "Speaking your thoughts aloud helps you hear what matters.",
			Icon:         IconMicrophone,
			Requirements: []Requirement{{Type: RequirementCount, Threshold: 25, Condition: ConditionVoiceEntries}},
			Rarity:       30,
			Order:        40,
		},
		{
			ID:           "the_novelist",
			Name:         "The Novelist",
			Category:     CategoryJourney,
			Tier:         TierGold,
			Description:  "Write a single entry of 1000 words or more",
			Insight:      "Sometimes a feeling needs a whole chapter.",
			Icon:         IconFeather,
			Requirements: []Requirement{{Type: RequirementWordCount, Threshold: 1000}},
			Rarity:       12,
			Order:        50,
		},
		{
			ID:           "century_of_thoughts",
			Name:         "Century of Thoughts",
			Category:     CategoryJourney,
			Tier:         TierGold,
			Description:  "Write 100 journal entries",
			Insight:      "One hundred moments captured. Look back at how far you have come.",
			Icon:         IconBook,
			Requirements: []Requirement{{Type: RequirementCount, Threshold: 100}},
			Rarity:       15,
			Order:        60,
		},
		{
			ID:           "haiku_heart",
			Name:         "Haiku Heart",
			Category:     CategoryJourney,
			Tier:         TierBronze,
			Description:  "Write 20 short entries of under 50 words",
			Insight:      "Brevity is a skill. A few words can hold a whole day.",
			Icon:         IconFeather,
			Requirements: []Requirement{{Type: RequirementCount, Threshold: 20, Condition: ConditionShortEntries}},
			Rarity:       40,
			Order:        70,
		},

		// resilience
		{
			ID:           "bounce_back",
			Name:         "Bounce Back",
			Category:     CategoryResilience,
			Tier:         TierSilver,
			Description:  "Turn a difficult mood into a positive one within 24 hours, three times",
			Insight:      "Hard moments pass. You have proof that you can move through them.",
			Icon:         IconMountain,
			Requirements: []Requirement{{Type: RequirementMoodChange, Threshold: 3, Condition: ConditionNegativeToPositive24h}},
			Rarity:       35,
			Order:        110,
		},
		{
			ID:           "the_comeback",
			Name:         "The Comeback",
			Category:     CategoryResilience,
			Tier:         TierSilver,
			Description:  "Return after a week away and write 3 entries within 5 days",
			Insight:      "Stepping away is human. Coming back is what counts.",
			Icon:         IconPhoenix,
			Requirements: []Requirement{{Type: RequirementComeback, Threshold: 3, Window: 5, Condition: ConditionAfter7DayGap}},
			Rarity:       25,
			Order:        120,
		},
		{
			ID:           "rising_tide",
			Name:         "Rising Tide",
			Category:     CategoryResilience,
			Tier:         TierGold,
			Description:  "Improve your average mood score by 30% over the previous month",
			Insight:      "The numbers agree with what you may already feel: things are getting better.",
			Icon:         IconSunrise,
			Requirements: []Requirement{{Type: RequirementMoodChange, Threshold: 30, Window: 30, Condition: ConditionMonthOverMonthImprovement}},
			Rarity:       10,
			Order:        130,
		},
		{
			ID:          "through_the_storm",
			Name:        "Through the Storm",
			Category:    CategoryResilience,
			Tier:        TierGold,
			Description: "Keep journaling through 3 difficult days in a row, then find a brighter moment",
			Insight:     "You kept writing when it was hardest. That takes courage.",
			Icon:        IconShield,
			Requirements: []Requirement{
				{Type: RequirementStreak, Threshold: 3, Condition: ConditionNegativeMoodStreak},
				{Type: RequirementMoodChange, Threshold: 1, Condition: ConditionNegativeToPositive24h},
			},
			Rarity: 18,
			Order:  140,
		},

		// insight
		{
			ID:           "night_owl",
			Name:         "Night Owl",
			Category:     CategoryInsight,
			Tier:         TierBronze,
			Description:  "Write 10 entries between 11pm and 3am",
			Insight:      "Late nights bring quiet clarity. Notice what surfaces after dark.",
			Icon:         IconMoon,
			Requirements: []Requirement{{Type: RequirementTimePattern, Threshold: 10, Condition: ConditionNightHours}},
			Rarity:       28,
			Order:        210,
		},
		{
			ID:           "early_bird",
			Name:         "Early Bird",
			Category:     CategoryInsight,
			Tier:         TierBronze,
			Description:  "Write 10 entries before 7am",
			Insight:      "Starting the day with reflection sets its tone.",
			Icon:         IconSunrise,
			Requirements: []Requirement{{Type: RequirementTimePattern, Threshold: 10, Condition: ConditionMorningHours}},
			Rarity:       22,
			Order:        220,
		},
		{
			ID:           "pattern_seeker",
			Name:         "Pattern Seeker",
			Category:     CategoryInsight,
			Tier:         TierSilver,
			Description:  "Feel the same mood at the same time of day on 5 different days",
			Insight:      "Your moods follow rhythms. Knowing them gives you a head start.",
			Icon:         IconCompass,
			Requirements: []Requirement{{Type: RequirementTimePattern, Threshold: 5, Condition: ConditionSameMoodSameTime}},
			Rarity:       20,
			Order:        230,
		},
		{
			ID:           "emotional_spectrum",
			Name:         "Emotional Spectrum",
			Category:     CategoryInsight,
			Tier:         TierGold,
			Description:  "Record 5 different moods with no single mood dominating",
			Insight:      "A full life holds many feelings. You are making room for all of them.",
			Icon:         IconPrism,
			Requirements: []Requirement{{Type: RequirementDiversity, Threshold: 5}},
			Rarity:       14,
			Order:        240,
		},
		{
			ID:           "deep_reflector",
			Name:         "Deep Reflector",
			Category:     CategoryInsight,
			Tier:         TierSilver,
			Description:  "Receive reflections on 10 entries",
			Insight:      "Looking back on your words turns writing into understanding.",
			Icon:         IconLotus,
			Requirements: []Requirement{{Type: RequirementReflection, Threshold: 10}},
			Rarity:       33,
			Order:        250,
		},
		{
			ID:           "trigger_tracker",
			Name:         "Trigger Tracker",
			Category:     CategoryInsight,
			Tier:         TierGold,
			Description:  "Mention the same stress trigger in 5 separate entries",
			Insight:      "Naming what weighs on you is the first step to lightening it.",
			Icon:         IconKey,
			Requirements: []Requirement{{Type: RequirementReflection, Threshold: 5, Condition: ConditionTriggerWordsDetected}},
			Rarity:       16,
			Order:        260,
		},

		// connection
		{
			ID:           "archaeologist",
			Name:         "Archaeologist",
			Category:     CategoryConnection,
			Tier:         TierBronze,
			Description:  "Explore your analytics 10 times",
			Insight:      "Digging through your own history reveals patterns you might have missed.",
			Icon:         IconCompass,
			Requirements: []Requirement{{Type: RequirementCount, Threshold: 10, Condition: ConditionAnalyticsViews}},
			Rarity:       45,
			Order:        310,
		},
		{
			ID:           "kindred_spirit",
			Name:         "Kindred Spirit",
			Category:     CategoryConnection,
			Tier:         TierSilver,
			Description:  "Write 20 entries within 30 days",
			Insight:      "You have made space for yourself again and again this month.",
			Icon:         IconHeart,
			Requirements: []Requirement{{Type: RequirementCount, Threshold: 20, Window: 30}},
			Rarity:       27,
			Order:        320,
		},
		{
			ID:          "voice_and_verse",
			Name:        "Voice and Verse",
			Category:    CategoryConnection,
			Tier:        TierPlatinum,
			Description: "Record 10 voice entries and write one entry of 500 words",
			Insight:     "Whether spoken or written, your voice is finding its shape.",
			Icon:        IconMicrophone,
			Requirements: []Requirement{
				{Type: RequirementCount, Threshold: 10, Condition: ConditionVoiceEntries},
				{Type: RequirementWordCount, Threshold: 500},
			},
			Rarity: 9,
			Order:  330,
		},

		// hidden
		{
			ID:          "midnight_poet",
			Name:        "Midnight Poet",
			Category:    CategoryHidden,
			Tier:        TierDiamond,
			Description: "Write 5 late-night entries and one of at least 300 words",
			Insight:     "The quiet hours have made a writer of you.",
			Icon:        IconGem,
			Requirements: []Requirement{
				{Type: RequirementTimePattern, Threshold: 5, Condition: ConditionNightHours},
				{Type: RequirementWordCount, Threshold: 300},
			},
			Rarity: 3,
			Hidden: true,
			Order:  410,
		},
		{
			ID:          "full_circle",
			Name:        "Full Circle",
			Category:    CategoryHidden,
			Tier:        TierPlatinum,
			Description: "Come back after a break and journal every day for a week",
			Insight:     "You left, you returned, and you stayed. That is a full circle.",
			Icon:        IconPhoenix,
			Requirements: []Requirement{
				{Type: RequirementComeback, Threshold: 3, Window: 5, Condition: ConditionAfter7DayGap},
				{Type: RequirementStreak, Threshold: 7, Window: 7, Condition: ConditionFlexibleStreak},
			},
			Rarity: 4,
			Hidden: true,
			Order:  420,
		},
		{
			ID:           "the_alchemist",
			Name:         "The Alchemist",
			Category:     CategoryHidden,
			Tier:         TierDiamond,
			Description:  "Turn a difficult mood into a positive one within 24 hours, ten times",
			Insight:      "You have learned to turn lead into gold, again and again.",
			Icon:         IconGem,
			Requirements: []Requirement{{Type: RequirementMoodChange, Threshold: 10, Condition: ConditionNegativeToPositive24h}},
			Rarity:       2,
			Hidden:       true,
			Order:        430,
		},
	}
}
