package quiz

import "strconv"

// Question ids in the full catalog that other packages read directly.
const (
	FullName            = 1
	FullSectionSlider   = 5
	FullDegreeTypes     = 7
	FullKnowsField      = 10
	FullFieldChoice     = 11
	FullFieldConfidence = 12
	FullActivitiesOne   = 65
	FullActivitiesTwo   = 66
	FullActivitiesThree = 67
	FullCampusFactors   = 70
	FullCityFactors     = 72
	FullBudget          = 75
	FullScholarship     = 76
	FullHealth          = 78
	FullMentalHealth    = 80
	FullDisability      = 81
	FullGPA             = 83
	FullHousing         = 85
	FullDietary         = 87
)

var (
	accuracyLabels = []string{"Inaccurate", "Moderately Inaccurate", "Neutral", "Moderately Accurate", "Accurate"}
	opennessLabels = []string{"Very Inaccurate", "Moderately Inaccurate", "Neither Accurate nor Inaccurate", "Moderately Accurate", "Very Accurate"}
	activityLabels = []string{"Strongly dislike", "Dislike", "Unsure", "Like", "Strongly like"}
	yesNo          = []Option{{Value: "yes", Label: "Yes"}, {Value: "no", Label: "No"}}
)

// fullQuestions is the production questionnaire: priorities, field of
// interest, Big Five conscientiousness and openness items, three RIASEC
// activity grids, campus and city factors, and practical prerequisites.
func fullQuestions() []Question {
	qs := []Question{
		// ── Stage 1: personal preferences ──
		{
			ID: 1, Key: "q1", Type: TypeText, Required: true,
			Title:  "What's your name?",
			Config: Config{Placeholder: "Enter your name", MaxLength: 100},
		},
		{
			ID: 2, Key: "q2", Type: TypeMultiSelect, Required: true,
			Title:       "Nice to meet you! What kinds of things do you actually enjoy doing?",
			Description: "Pick as many as feel true",
			Config: Config{Options: []Option{
				{"creative", "Creating things- art, music, writing, or building"},
				{"problem_solving", "Figuring out how things work"},
				{"helping", "Helping people directly"},
				{"social", "Hanging out with friends"},
				{"learning", "Learning new things constantly"},
				{"active", "Being active or outdoors"},
				{"organizing", "Organizing and planning"},
				{"performing", "Performing or presenting"},
				{"deep_talk", "Having deep conversations"},
				{"relaxing", "Honestly? Scrolling, gaming, consuming content"},
			}},
		},
		{
			ID: 3, Key: "q3", Type: TypeMultiSelect, Required: true,
			Title:       "What actually matters to you in life?",
			Description: "Pick your top 5",
			Config: Config{MaxSelections: 5, Options: []Option{
				{"growth", "Growing and becoming better"},
				{"relationships", "My close relationships"},
				{"impact", "Making an actual impact"},
				{"freedom", "Freedom and independence"},
				{"adventure", "Adventure and new experiences"},
				{"creation", "Creating things that didn't exist before"},
				{"understanding", "Understanding how the world works"},
				{"security", "Security and stability"},
				{"authenticity", "Being authentic and true to myself"},
				{"joy", "Enjoying life and being happy"},
			}},
		},
		{
			ID: 4, Key: "q4", Type: TypeMultiSelect, Required: true,
			Title:       "What helps YOU when things get hard?",
			Description: "Pick up to 3",
			Config: Config{MaxSelections: 3, Options: []Option{
				{"resilience", "Remembering I've gotten through hard things before"},
				{"belief", "People who believe in me"},
				{"family", "My family supporting me"},
				{"friends", "Friends who get it"},
				{"mentors", "Mentors or guides"},
				{"growth_mindset", "Believing I can grow and improve"},
				{"perspective", "Taking a step back"},
				{"purpose", "Remembering why I started"},
				{"persistence", "Just keeping going"},
				{"chunking", "Breaking it into smaller pieces"},
			}},
		},
		{
			ID: FullSectionSlider, Key: "q5", Type: TypeConstraintSlider, Required: true,
			Title: "Imagine you have 100 points to distribute based on importance:",
			Config: Config{TargetTotal: 100, Categories: []Option{
				{"degree", "The degree I am learning"},
				{"campus", "The campus environment"},
				{"city", "The city where I would live"},
			}},
		},
		statement(6, "FILLER_1", "Nice work! You've set your priorities.", "Next up: Let's figure out what drives you.", nil),
		{
			ID: FullDegreeTypes, Key: "q6", Type: TypeMultiSelect, Required: true,
			Title: "What type of degree are you looking for in Israel?",
			Config: Config{MaxSelections: 3, Options: []Option{
				{"bachelor", "Bachelor's degree (BA, BSc)"},
				{"master", "Master's degree (MA, MSc, MBA)"},
				{"phd", "PhD"},
			}},
		},
		{
			ID: 8, Key: "q7", Type: TypeMultiSelect, Required: true,
			Title:       "What would you like to achieve by learning a degree in Israel?",
			Description: "Select up to 3 that are most important to you",
			Config: Config{MaxSelections: 3, Options: []Option{
				{"degree", "Achieve an academic degree"},
				{"career", "Access better career opportunities"},
				{"growth", "Develop personally and intellectually"},
				{"experience", "Gain international experience"},
				{"language", "Learn or improve a new language"},
				{"network", "Build an international network"},
				{"living", "Experience living in a different country"},
				{"opportunities", "Access opportunities not available at home"},
			}},
		},
		statement(9, "FILLER_2", "Perfect! We are ready to move forward.", "I am learning more about who you are. The more I learn, the better I can help.", nil),
		{
			ID: FullKnowsField, Key: "q8", Type: TypeDropdown, Required: true,
			Title: "Do you already know what you want to learn?",
			Config: Config{Options: []Option{
				{"yes", "Yes"},
				{"no", "No"},
				{"idea", "I have an idea but I want to explore"},
			}},
		},
		{
			ID: FullFieldChoice, Key: "q9", Type: TypeTwoLevelDropdown, Required: true,
			Title:  "What would you like to learn?",
			ShowIf: &Condition{QuestionID: FullKnowsField, Operator: OpIn, Value: Choices{"yes", "idea"}},
			Config: Config{
				Level1Label: "Area",
				Level2Label: "Specific Interest",
				Groups:      fieldGroups(),
			},
		},
		{
			ID: FullFieldConfidence, Key: "q10", Type: TypeLikert, Required: true,
			Title:  "How certain are you that this is the right choice for you?",
			ShowIf: &Condition{QuestionID: FullKnowsField, Operator: OpEquals, Value: Text("yes")},
			Config: Config{Scale: &Scale{Min: 1, Max: 5, Labels: []string{
				"Still exploring", "Leaning this way", "Pretty sure", "Very confident", "Completely certain",
			}}},
		},
		statement(13, "FILLER_3", "I understand. Let's go deeper.",
			"The next questions look at your natural tendencies. There are no wrong answers, just be honest.",
			&Condition{QuestionID: FullKnowsField, Operator: OpIn, Value: Choices{"no", "idea"}}),
	}

	// ── Big Five: conscientiousness ──
	conscientiousness := []string{
		"I complete tasks successfully.",
		"I excel in what I do.",
		"I handle tasks smoothly.",
		"I know how to get things done.",
		"I like to tidy up.",
		"I often forget to put things back in their proper place.",
		"I leave a mess in my room.",
		"I leave my belongings around.",
		"I keep my promises.",
		"I tell the truth.",
		"I break rules.",
		"I break my promises.",
		"I do more than what's expected of me.",
		"I work hard.",
		"I put little time and effort into my work.",
		"I do just enough work to get by.",
		"I am always prepared.",
		"I carry out my plans.",
		"I waste my time.",
		"I have difficulty starting tasks.",
		"I jump into things without thinking.",
		"I make rash decisions.",
		"I rush into things.",
		"I act without thinking.",
	}
	for i, title := range conscientiousness {
		qs = append(qs, agreement(14+i, keyN(11+i), title, accuracyLabels))
	}

	qs = append(qs, statement(38, "FILLER_4", "Halfway done with this section.", "You're doing great!", nil))

	// ── Big Five: openness ──
	openness := []string{
		"I have a vivid imagination.",
		"I enjoy wild flights of fantasy.",
		"I love to daydream.",
		"I like to get lost in thought.",
		"I believe in the importance of art.",
		"I see beauty in things that others might not notice.",
		"I do not like poetry.",
		"I do not enjoy going to art museums.",
		"I experience my emotions intensely.",
		"I feel others' emotions.",
		"I rarely notice my emotional reactions.",
		"I don't understand people who get emotional.",
		"I prefer variety to routine.",
		"I prefer to stick with things that I know.",
		"I dislike changes.",
		"I am attached to conventional ways.",
		"I love to read challenging material.",
		"I avoid philosophical discussions.",
		"I have difficulty understanding abstract ideas.",
		"I am not interested in theoretical discussions.",
		"I spend time daydreaming.",
		"I like to solve complex problems.",
		"I feel others' emotions.",
		"I prefer to stick to familiar routines.",
	}
	for i, title := range openness {
		qs = append(qs, agreement(39+i, keyN(35+i), title, opennessLabels))
	}

	// ── RIASEC activity grids ──
	qs = append(qs,
		statement(63, "FILLER_5", "Great. We've got a clear picture of how you work.", "", nil),
		statement(64, "FILLER_6", "Great. Now I'd like to learn more about your interests.",
			"I'll show you three lists of activities, one after the other. How would you feel about doing each of the following activities? Focus ONLY on whether you'd enjoy the activity, ignore salary/skills. Do not overthink please!", nil),
		activities(FullActivitiesOne, "q59", "Rate each activity (0-4).", 1, []string{
			"Build kitchen cabinets",
			"Develop a new medicine",
			"Write books or plays",
			"Help people with personal or emotional problems",
			"Manage a department within a large company",
			"Install software across computers on a large network",
			"Repair household appliances",
			"Study ways to reduce water pollution",
			"Compose or arrange music",
			"Give career guidance to people",
		}),
		activities(FullActivitiesTwo, "q60", "Rate each activity (0-4).", 11, []string{
			"Start your own business",
			"Operate a calculator",
			"Assemble electronic parts",
			"Conduct chemical experiments",
			"Create special effects for movies",
			"Perform rehabilitation therapy",
			"Negotiate business contracts",
			"Keep shipping and receiving records",
			"Drive a truck to deliver packages to offices and homes",
			"Examine blood samples using a microscope",
		}),
		activities(FullActivitiesThree, "q61", "Last set! Rate each activity (0-4).", 21, []string{
			"Paint sets for plays",
			"Do volunteer work at a non-profit organization",
			"Market a new line of clothing",
			"Inventory supplies using a hand-held computer",
			"Test the quality of parts before shipment",
			"Develop a way to better predict the weather",
			"Write scripts for movies or television shows",
			"Teach a high-school class",
			"Sell merchandise at a department store",
			"Stamp, sort, and distribute mail for an organization",
		}),
		statement(68, "FILLER_6_RESULTS", "Based on your answers, your two main profiles are:",
			"Don't worry, I'll further explain what that means in the final report.", nil),
	)

	// ── Campus and city ──
	qs = append(qs,
		statement(69, "FILLER_7", "Let's figure out what kind of campus environment fits you best.",
			"Israel has everything from intense research universities in major cities to smaller campuses with tight-knit communities. Let's find your match!", nil),
		Question{
			ID: FullCampusFactors, Key: "q62", Type: TypeMultiSelect, Required: true,
			Title:       "From the factors listed below, select the most important for your university choice.",
			Description: "Please select at least 3 and no more than 7.",
			Config: Config{MinSelections: 3, MaxSelections: 7, Options: []Option{
				{"library_resources", "Quality library resources and study materials"},
				{"study_spaces", "Availability of quiet study spaces"},
				{"academic_support", "Academic advising and tutoring support"},
				{"international_community", "Large international student community"},
				{"collaborative_community", "Collaborative students community"},
				{"social_events", "Frequent social events and activities"},
				{"gym_sports", "Gym and sports facilities"},
				{"dining_options", "Quality dining options"},
				{"housing_quality", "Good student housing quality"},
				{"prayer_spaces", "Prayer spaces and religious accommodations"},
				{"dietary_options", "Dietary options (vegan, kosher, vegetarian, etc.)"},
				{"career_counseling", "Career counseling and job search support"},
				{"internship_opportunities", "Internship and industry connection opportunities"},
				{"alumni_network", "Strong alumni network"},
				{"small_campus", "A small campus"},
				{"large_campus", "A large campus"},
				{"urban_setting", "An urban setting"},
				{"suburban_rural", "A suburban or rural setting"},
			}},
		},
		statement(71, "FILLER_8", "Let's look at the cities where you could live.",
			"Big city life? Or more quiet and closer to nature? Your preferences will guide the recommendations.", nil),
		Question{
			ID: FullCityFactors, Key: "q63", Type: TypeMultiSelect, Required: true,
			Title: "From the factors listed below, select the most important for your university choice (up to 5):",
			Config: Config{MinSelections: 1, MaxSelections: 5, Options: []Option{
				{"large_city", "A large city"},
				{"small_city", "A small city"},
				{"affordable_living", "Affordable cost of living"},
				{"affordable_housing", "Affordable housing options"},
				{"public_transport", "Quality public transportation"},
				{"walkable_bike", "Walkable/bike-friendly city"},
				{"airport_access", "Easy airport access"},
				{"cultural_venues", "Museums, arts, cultural venues"},
				{"nightlife_restaurants", "Vibrant nightlife and restaurants"},
				{"expat_community", "International/expat community presence"},
				{"center_israel", "Closer to the center of Israel"},
				{"north_israel", "Closer to the North of Israel"},
				{"south_israel", "Closer to the South of Israel"},
			}},
		},
	)

	// ── Practical prerequisites ──
	qs = append(qs,
		statement(73, "FILLER_9", "Almost there.",
			"Last section: The practical stuff - budget, visa requirements, health needs, etc. This ensures we only recommend programs that actually work for you.", nil),
		dropdown(74, "q64", "How old are you?", []Option{
			{"17_or_less", "17 or less"},
			{"18", "18"},
			{"19_21", "19-21"},
			{"22_24", "22-24"},
			{"25_or_older", "25 or older"},
		}),
		dropdown(FullBudget, "q65", "What is your total annual budget for university (tuition + living costs)?", []Option{
			{"under_5000", "Under $5,000/year"},
			{"5000_10000", "$5,000 - $10,000/year"},
			{"10000_15000", "$10,000 - $15,000/year"},
			{"15000_20000", "$15,000 - $20,000/year"},
			{"20000_30000", "$20,000 - $30,000/year"},
			{"over_30000", "Over $30,000/year"},
		}),
		dropdown(FullScholarship, "q66", "Do you require scholarship/financial aid to attend?", []Option{
			{"no", "No"},
			{"partial", "Partial"},
			{"full", "Full"},
		}),
		Question{
			ID: 77, Key: "q67", Type: TypeCurrency, Required: true,
			Title:  "What is the minimum scholarship amount needed per year?",
			ShowIf: &Condition{QuestionID: FullScholarship, Operator: OpIn, Value: Choices{"partial", "full"}},
			Config: Config{Amount: &AmountRange{Currency: "USD", Min: 0, Max: 50000}},
		},
		dropdown(FullHealth, "q68", "Do you have pre-existing health conditions requiring ongoing care?", yesNo),
		details(79, "q69", "If yes, specify condition(s)", "Please describe your health conditions", FullHealth),
		dropdown(FullMentalHealth, "q70", "Do you have mental health needs requiring support services?", yesNo),
		dropdown(FullDisability, "q71", "Do you have disabilities requiring campus/housing accommodations?", yesNo),
		details(82, "q72", "If yes, specify type", "Please describe accommodation needs", FullDisability),
		dropdown(FullGPA, "q73", "What is your high school GPA or average grade?", []Option{
			{"below_2_5", "Below 2.5"},
			{"2_5_2_9", "2.5 - 2.9"},
			{"3_0_3_2", "3.0 - 3.2"},
			{"3_3_3_5", "3.3 - 3.5"},
			{"3_6_3_8", "3.6 - 3.8"},
			{"3_9_4_0", "3.9 - 4.0"},
			{"dont_know", "Don't know yet"},
		}),
		dropdown(84, "q74", "What is your SAT/Psychometric score?", []Option{
			{"no_sat", "I don't have an SAT score"},
			{"below_1000", "Below 1000"},
			{"1000_1100", "1000-1100"},
			{"1100_1200", "1100-1200"},
			{"1200_1300", "1200-1300"},
			{"1300_1400", "1300-1400"},
			{"1400_plus", "1400+"},
		}),
		dropdown(FullHousing, "q75", "Do you require housing or you already have an arrangement?", []Option{
			{"require_housing", "I require housing"},
			{"have_arrangement", "I have an arrangement"},
		}),
		Question{
			ID: 86, Key: "q76", Type: TypeDropdown, Required: true,
			Title:  "What would be your housing preference?",
			ShowIf: &Condition{QuestionID: FullHousing, Operator: OpEquals, Value: Text("require_housing")},
			Config: Config{Options: []Option{
				{"on_campus", "On-campus"},
				{"off_campus", "Off-campus"},
				{"either", "Either one"},
			}},
		},
		dropdown(FullDietary, "q77", "Do you have dietary restrictions?", yesNo),
		Question{
			ID: 88, Key: "q78", Type: TypeMultiSelect, Required: true,
			Title:  "If yes, specify:",
			ShowIf: &Condition{QuestionID: FullDietary, Operator: OpEquals, Value: Text("yes")},
			Config: Config{Options: []Option{
				{"vegetarian", "Vegetarian"},
				{"vegan", "Vegan"},
				{"allergies", "Allergies"},
				{"kosher", "Kosher"},
				{"other", "Other"},
			}},
		},
		Question{
			ID: 89, Key: "q79", Type: TypeDate, Required: true,
			Title: "When would you like to start your studies?",
			Config: Config{Options: []Option{
				{"fall_2026", "Fall 2026"},
				{"spring_2027", "Spring 2027"},
				{"fall_2027", "Fall 2027"},
				{"spring_2028", "Spring 2028"},
				{"later", "Later"},
			}},
		},
		statement(90, "COMPLETION", "You're done!",
			"We're processing your results now. We match your profile to programs across Israeli universities, calculate fit scores based on your priorities and filter by your practical requirements.", nil),
	)

	return qs
}

// fieldGroups are the cascading field-of-interest choices. Level 1 values
// name the study domains and level 2 values name keyword interests.
func fieldGroups() []OptionGroup {
	return []OptionGroup{
		{Value: "Innovation & Technology", Label: "Innovation & Technology", Options: []Option{
			{"entrepreneurship", "Entrepreneurship"},
			{"technology", "Technology & Computing"},
			{"engineering", "Engineering"},
			{"sustainability", "Sustainability"},
			{"data_science", "Data Science"},
		}},
		{Value: "Leadership & Influence", Label: "Leadership & Influence", Options: []Option{
			{"business_leadership", "Business Leadership"},
			{"government", "Government"},
			{"communications", "Communications"},
			{"international_relations", "International Relations"},
			{"policy", "Public Policy"},
		}},
		{Value: "Arts & Creative Expression", Label: "Arts & Creative Expression", Options: []Option{
			{"music", "Music"},
			{"film", "Film"},
			{"liberal_arts", "Liberal Arts"},
			{"creative_writing", "Creative Writing"},
			{"interdisciplinary_arts", "Interdisciplinary Arts"},
		}},
		{Value: "Social Impact & Human Services", Label: "Social Impact & Human Services", Options: []Option{
			{"social_work", "Social Work"},
			{"emergency_management", "Emergency Management"},
			{"conflict_resolution", "Conflict Resolution"},
			{"public_health", "Public Health"},
			{"education", "Education"},
		}},
		{Value: "Exploratory & Interdisciplinary", Label: "Exploratory & Interdisciplinary", Options: []Option{
			{"undecided", "Still deciding"},
			{"dual_degree", "Dual Degree"},
			{"interdisciplinary", "Interdisciplinary Studies"},
			{"research", "Research"},
			{"global_studies", "Global Studies"},
		}},
	}
}

// ─── BUILDERS ────────────────────────────────────────────────────────────────

func statement(id int, key, title, description string, showIf *Condition) Question {
	return Question{ID: id, Key: key, Type: TypeStatement, Title: title, Description: description, ShowIf: showIf}
}

func agreement(id int, key, title string, labels []string) Question {
	return Question{
		ID: id, Key: key, Type: TypeLikert, Required: true, Title: title,
		Config: Config{Scale: &Scale{Min: 1, Max: 5, Labels: labels}},
	}
}

func dropdown(id int, key, title string, opts []Option) Question {
	return Question{ID: id, Key: key, Type: TypeDropdown, Required: true, Title: title, Config: Config{Options: opts}}
}

// details is a free-text follow-up shown when parent is answered "yes".
func details(id int, key, title, placeholder string, parent int) Question {
	return Question{
		ID: id, Key: key, Type: TypeText, Required: true, Title: title,
		ShowIf: &Condition{QuestionID: parent, Operator: OpEquals, Value: Text("yes")},
		Config: Config{Placeholder: placeholder, MaxLength: 500},
	}
}

// activities builds a 0-4 rating grid whose items are named activity_<n>
// starting at first.
func activities(id int, key, title string, first int, labels []string) Question {
	items := make([]Option, len(labels))
	for i, l := range labels {
		items[i] = Option{Value: ActivityID(first + i), Label: l}
	}
	return Question{
		ID: id, Key: key, Type: TypeNestedRating, Required: true, Title: title,
		Config: Config{Scale: &Scale{Min: 0, Max: 4, Labels: activityLabels}, Items: items},
	}
}

// ActivityID names the n-th RIASEC activity item.
func ActivityID(n int) string {
	return "activity_" + strconv.Itoa(n)
}

func keyN(n int) string { return "q" + strconv.Itoa(n) }
